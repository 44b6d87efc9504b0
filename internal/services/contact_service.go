package services

import (
	"context"
	"strings"

	"pms/internal/models"
	apperrors "pms/pkg/errors"
	"pms/pkg/events"
	"pms/pkg/logger"
	"pms/pkg/pagination"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// contactOrdering 允许的排序字段
var contactOrdering = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type ContactService struct {
	db        *gorm.DB
	validator *RelationshipValidator
	notifier  changeNotifier
}

func NewContactService(db *gorm.DB, broker events.Broker) *ContactService {
	return &ContactService{
		db:        db,
		validator: NewRelationshipValidator(),
		notifier:  changeNotifier{broker: broker},
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建联系人
func (s *ContactService) Create(ctx context.Context, req *models.CreateContactRequest) (*models.Contact, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	contactType := req.ContactType
	if contactType == "" {
		contactType = models.ContactTypeTenant
	}

	contact := &models.Contact{
		Name:        strings.TrimSpace(req.Name),
		ContactType: contactType,
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		Address:     req.Address,
	}
	if contact.Name == "" {
		return nil, apperrors.FieldValidation("name", "该字段不能为空")
	}

	if err := s.db.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, err
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"contact_id":   contact.ID,
		"contact_type": contact.ContactType,
	}).Info("联系人已创建")
	s.notifier.notify(ctx, events.ContactCreated, contact.ID)
	return contact, nil
}

// GetByID 根据ID获取联系人
func (s *ContactService) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := s.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("联系人不存在")
		}
		return nil, err
	}
	return &contact, nil
}

// Update 部分更新联系人
func (s *ContactService) Update(ctx context.Context, id uint, req *models.UpdateContactRequest) (*models.Contact, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		req.Email = &email
	}

	var contact models.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&contact, id).Error; err != nil {
			if isNotFound(err) {
				return apperrors.NotFound("联系人不存在")
			}
			return err
		}

		if req.ContactType != nil {
			if err := s.validator.EnsureContactTypeChangeAllowed(tx, &contact, *req.ContactType); err != nil {
				return err
			}
			contact.ContactType = *req.ContactType
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperrors.FieldValidation("name", "该字段不能为空")
			}
			contact.Name = name
		}
		if req.Email != nil {
			contact.Email = *req.Email
		}
		if req.Phone != nil {
			contact.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Address != nil {
			contact.Address = *req.Address
		}

		return tx.Save(&contact).Error
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithField("contact_id", contact.ID).Info("联系人已更新")
	s.notifier.notify(ctx, events.ContactUpdated, contact.ID)
	return &contact, nil
}

// Delete 删除联系人，被单元或租约引用时拒绝
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contact models.Contact
		if err := tx.First(&contact, id).Error; err != nil {
			if isNotFound(err) {
				return apperrors.NotFound("联系人不存在")
			}
			return err
		}
		if err := s.validator.EnsureContactDeletable(tx, id); err != nil {
			return err
		}
		return tx.Delete(&contact).Error
	})
	if err != nil {
		return err
	}

	logger.GetLogger().WithField("contact_id", id).Info("联系人已删除")
	s.notifier.notify(ctx, events.ContactDeleted, id)
	return nil
}

// ========== 查询方法 ==========

// List 分页查询联系人
func (s *ContactService) List(ctx context.Context, filter models.ContactFilter, page *pagination.PageParams) ([]models.Contact, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Contact{})

	if filter.ContactType != "" {
		query = query.Where("contact_type = ?", filter.ContactType)
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?",
			pattern, pattern, pattern)
	}

	var contacts []models.Contact
	order := pagination.ParseOrdering(filter.Ordering, contactOrdering, "name")
	total, err := paginate(query, page, order, &contacts)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// ListLandlords 房东列表
func (s *ContactService) ListLandlords(ctx context.Context, filter models.ContactFilter, page *pagination.PageParams) ([]models.Contact, int64, error) {
	filter.ContactType = models.ContactTypeLandlord
	return s.List(ctx, filter, page)
}

// ListTenants 租客列表
func (s *ContactService) ListTenants(ctx context.Context, filter models.ContactFilter, page *pagination.PageParams) ([]models.Contact, int64, error) {
	filter.ContactType = models.ContactTypeTenant
	return s.List(ctx, filter, page)
}

// normalizeEmail 去除首尾空白后校验邮箱格式，空串表示不填
func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", nil
	}
	if err := requestValidator.Var(email, "email,max=254"); err != nil {
		return "", apperrors.FieldValidation("email", "邮箱格式不正确")
	}
	return email, nil
}
