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

var unitOrdering = map[string]string{
	"unit_number": "unit_number",
	"value":       "value",
	"created_at":  "created_at",
}

type UnitService struct {
	db        *gorm.DB
	validator *RelationshipValidator
	notifier  changeNotifier
}

func NewUnitService(db *gorm.DB, broker events.Broker) *UnitService {
	return &UnitService{
		db:        db,
		validator: NewRelationshipValidator(),
		notifier:  changeNotifier{broker: broker},
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建单元，新单元总是空置
func (s *UnitService) Create(ctx context.Context, req *models.CreateUnitRequest) (*models.Unit, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Value < 0 {
		return nil, apperrors.FieldValidation("value", "价值不能为负数")
	}

	unitType := req.Type
	if unitType == "" {
		unitType = models.UnitTypeApartment
	}

	unit := &models.Unit{
		UnitNumber: strings.TrimSpace(req.UnitNumber),
		Type:       unitType,
		Location:   strings.TrimSpace(req.Location),
		Value:      req.Value,
		Status:     models.UnitStatusVacant,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := s.validator.EnsureLandlordOwner(tx, req.OwnerID)
		if err != nil {
			return err
		}
		if err := s.ensureUnitNumberFree(tx, unit.UnitNumber, 0); err != nil {
			return err
		}
		unit.AssignOwner(owner)
		return tx.Omit("Owner").Create(unit).Error
	})
	if isDuplicate(err) {
		// 并发创建同一编号时由唯一索引兜底
		return nil, unitNumberTaken(unit.UnitNumber)
	}
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"unit_id":  unit.ID,
		"owner_id": unit.OwnerID,
	}).Info("单元已创建")
	s.notifier.notify(ctx, events.UnitCreated, unit.ID)
	return unit, nil
}

// GetByID 根据ID获取单元（含所有者）
func (s *UnitService) GetByID(ctx context.Context, id uint) (*models.Unit, error) {
	var unit models.Unit
	if err := s.db.WithContext(ctx).Preload("Owner").First(&unit, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("单元不存在")
		}
		return nil, err
	}
	return &unit, nil
}

// Update 部分更新单元
func (s *UnitService) Update(ctx context.Context, id uint, req *models.UpdateUnitRequest) (*models.Unit, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Value != nil && *req.Value < 0 {
		return nil, apperrors.FieldValidation("value", "价值不能为负数")
	}

	var unit models.Unit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.validator.LockUnit(tx, id)
		if err != nil {
			return err
		}
		unit = *locked

		if req.OwnerID != nil && *req.OwnerID != unit.OwnerID {
			owner, err := s.validator.EnsureLandlordOwner(tx, *req.OwnerID)
			if err != nil {
				return err
			}
			if err := s.validator.EnsureOwnerChangeAllowed(tx, &unit, owner.ID); err != nil {
				return err
			}
			unit.AssignOwner(owner)
		}
		if req.UnitNumber != nil {
			number := strings.TrimSpace(*req.UnitNumber)
			if number == "" {
				return apperrors.FieldValidation("unit_number", "该字段不能为空")
			}
			if err := s.ensureUnitNumberFree(tx, number, unit.ID); err != nil {
				return err
			}
			unit.UnitNumber = number
		}
		if req.Status != nil {
			if err := s.validator.EnsureStatusConsistent(tx, &unit, *req.Status); err != nil {
				return err
			}
			unit.Status = *req.Status
		}
		if req.Type != nil {
			unit.Type = *req.Type
		}
		if req.Location != nil {
			location := strings.TrimSpace(*req.Location)
			if location == "" {
				return apperrors.FieldValidation("location", "该字段不能为空")
			}
			unit.Location = location
		}
		if req.Value != nil {
			unit.Value = *req.Value
		}

		return tx.Omit("Owner").Save(&unit).Error
	})
	if isDuplicate(err) {
		return nil, unitNumberTaken(unit.UnitNumber)
	}
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithField("unit_id", unit.ID).Info("单元已更新")
	s.notifier.notify(ctx, events.UnitUpdated, unit.ID)
	return s.GetByID(ctx, unit.ID)
}

// Delete 删除单元，被租约引用时拒绝
func (s *UnitService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unit, err := s.validator.LockUnit(tx, id)
		if err != nil {
			return err
		}
		if err := s.validator.EnsureUnitDeletable(tx, unit.ID); err != nil {
			return err
		}
		return tx.Delete(unit).Error
	})
	if err != nil {
		return err
	}

	logger.GetLogger().WithField("unit_id", id).Info("单元已删除")
	s.notifier.notify(ctx, events.UnitDeleted, id)
	return nil
}

// ensureUnitNumberFree 单元编号唯一
func (s *UnitService) ensureUnitNumberFree(tx *gorm.DB, number string, exceptID uint) error {
	var count int64
	query := tx.Model(&models.Unit{}).Where("unit_number = ?", number)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return unitNumberTaken(number)
	}
	return nil
}

func unitNumberTaken(number string) error {
	return apperrors.Conflict("单元编号 %s 已存在", number).WithField("unit_number", "单元编号已存在")
}

// ========== 查询方法 ==========

// List 分页查询单元
func (s *UnitService) List(ctx context.Context, filter models.UnitFilter, page *pagination.PageParams) ([]models.Unit, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Unit{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.OwnerID != 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(unit_number) LIKE ? OR LOWER(location) LIKE ?", pattern, pattern)
	}

	var units []models.Unit
	order := pagination.ParseOrdering(filter.Ordering, unitOrdering, "unit_number")
	total, err := paginate(query, page, order, &units, "Owner")
	if err != nil {
		return nil, 0, err
	}
	return units, total, nil
}

// ListVacant 空置单元
func (s *UnitService) ListVacant(ctx context.Context, filter models.UnitFilter, page *pagination.PageParams) ([]models.Unit, int64, error) {
	filter.Status = models.UnitStatusVacant
	return s.List(ctx, filter, page)
}

// ListOccupied 已占用单元
func (s *UnitService) ListOccupied(ctx context.Context, filter models.UnitFilter, page *pagination.PageParams) ([]models.Unit, int64, error) {
	filter.Status = models.UnitStatusOccupied
	return s.List(ctx, filter, page)
}
