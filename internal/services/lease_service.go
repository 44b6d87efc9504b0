package services

import (
	"context"
	"strings"
	"time"

	"pms/internal/models"
	apperrors "pms/pkg/errors"
	"pms/pkg/events"
	"pms/pkg/logger"
	"pms/pkg/pagination"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var leaseOrdering = map[string]string{
	"start_date":  "start_date",
	"rent_amount": "rent_amount",
	"duration":    "duration",
	"created_at":  "created_at",
}

type LeaseService struct {
	db        *gorm.DB
	validator *RelationshipValidator
	notifier  changeNotifier
}

func NewLeaseService(db *gorm.DB, broker events.Broker) *LeaseService {
	return &LeaseService{
		db:        db,
		validator: NewRelationshipValidator(),
		notifier:  changeNotifier{broker: broker},
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建租约
//
// 解析三方、校验关系与条款、占用单元、写入租约在同一事务中完成，
// 任一步失败两行都不会改变。
func (s *LeaseService) Create(ctx context.Context, req *models.CreateLeaseRequest) (*models.Lease, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return nil, apperrors.FieldValidation("start_date", "日期格式应为 YYYY-MM-DD")
	}

	var lease *models.Lease
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parties, err := s.validator.ResolveLeaseParties(tx, req.UnitID, req.TenantID, req.LandlordID)
		if err != nil {
			return err
		}
		tenant, landlord, err := s.validator.ValidateLeaseParties(parties)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateLeaseTerms(req.Duration, req.RentAmount); err != nil {
			return err
		}
		if err := s.validator.OccupyUnit(tx, parties.Unit.ID); err != nil {
			return err
		}

		lease = models.NewLease(parties.Unit, tenant, landlord, models.LeaseTerms{
			StartDate:        start,
			Duration:         req.Duration,
			RentAmount:       req.RentAmount,
			PaymentFrequency: req.PaymentFrequency,
		})
		return tx.Omit(clause.Associations).Create(lease).Error
	})
	if err != nil {
		logger.GetLogger().WithFields(logrus.Fields{
			"unit_id":     req.UnitID,
			"tenant_id":   req.TenantID,
			"landlord_id": req.LandlordID,
		}).Warnf("创建租约失败: %v", err)
		return nil, err
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"lease_id": lease.ID,
		"unit_id":  lease.UnitID,
	}).Info("租约已创建")
	s.notifier.notify(ctx, events.LeaseCreated, lease.ID)
	return s.GetByID(ctx, lease.ID)
}

// GetByID 根据ID获取租约（含单元、所有者、租客、房东）
func (s *LeaseService) GetByID(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	err := s.db.WithContext(ctx).
		Preload("Unit").
		Preload("Unit.Owner").
		Preload("Tenant").
		Preload("Landlord").
		First(&lease, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("租约不存在")
		}
		return nil, err
	}
	return &lease, nil
}

// Update 部分更新租约，合并后的记录重新走完整校验
func (s *LeaseService) Update(ctx context.Context, id uint, req *models.UpdateLeaseRequest) (*models.Lease, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lease models.Lease
		if err := tx.First(&lease, id).Error; err != nil {
			if isNotFound(err) {
				return apperrors.NotFound("租约不存在")
			}
			return err
		}

		unitID, tenantID, landlordID := lease.UnitID, lease.TenantID, lease.LandlordID
		if req.UnitID != nil {
			unitID = *req.UnitID
		}
		if req.TenantID != nil {
			tenantID = *req.TenantID
		}
		if req.LandlordID != nil {
			landlordID = *req.LandlordID
		}
		duration, rent := lease.Duration, lease.RentAmount
		if req.Duration != nil {
			duration = *req.Duration
		}
		if req.RentAmount != nil {
			rent = *req.RentAmount
		}
		start := lease.Start()
		if req.StartDate != nil {
			parsed, err := models.ParseDate(*req.StartDate)
			if err != nil {
				return apperrors.FieldValidation("start_date", "日期格式应为 YYYY-MM-DD")
			}
			start = parsed
		}

		parties, err := s.validator.ResolveLeaseParties(tx, unitID, tenantID, landlordID)
		if err != nil {
			return err
		}
		if _, _, err := s.validator.ValidateLeaseParties(parties); err != nil {
			return err
		}
		if err := s.validator.ValidateLeaseTerms(duration, rent); err != nil {
			return err
		}

		// 有效租约换单元：占用新单元并释放旧单元
		if lease.IsActive() && unitID != lease.UnitID {
			if err := s.validator.OccupyUnit(tx, unitID); err != nil {
				return err
			}
			if err := s.validator.ReleaseUnit(tx, lease.UnitID, lease.ID); err != nil {
				return err
			}
		}

		lease.UnitID = unitID
		lease.TenantID = tenantID
		lease.LandlordID = landlordID
		lease.Duration = duration
		lease.RentAmount = rent
		lease.StartDate = datatypes.Date(start)
		if req.PaymentFrequency != nil {
			lease.PaymentFrequency = *req.PaymentFrequency
		}
		return tx.Omit(clause.Associations).Save(&lease).Error
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithField("lease_id", id).Info("租约已更新")
	s.notifier.notify(ctx, events.LeaseUpdated, id)
	return s.GetByID(ctx, id)
}

// Terminate 终止有效租约并释放单元
func (s *LeaseService) Terminate(ctx context.Context, id uint) (*models.Lease, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lease models.Lease
		if err := tx.First(&lease, id).Error; err != nil {
			if isNotFound(err) {
				return apperrors.NotFound("租约不存在")
			}
			return err
		}
		if !lease.IsActive() {
			return apperrors.Conflict("租约已终止")
		}
		if _, err := s.validator.LockUnit(tx, lease.UnitID); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&lease).Update("terminated_at", now).Error; err != nil {
			return err
		}
		return s.validator.ReleaseUnit(tx, lease.UnitID, lease.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithField("lease_id", id).Info("租约已终止")
	s.notifier.notify(ctx, events.LeaseTerminated, id)
	return s.GetByID(ctx, id)
}

// Delete 删除租约，有效租约同时释放单元
func (s *LeaseService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lease models.Lease
		if err := tx.First(&lease, id).Error; err != nil {
			if isNotFound(err) {
				return apperrors.NotFound("租约不存在")
			}
			return err
		}
		if err := tx.Delete(&lease).Error; err != nil {
			return err
		}
		if !lease.IsActive() {
			return nil
		}
		if _, err := s.validator.LockUnit(tx, lease.UnitID); err != nil {
			return err
		}
		return s.validator.ReleaseUnit(tx, lease.UnitID, lease.ID)
	})
	if err != nil {
		return err
	}

	logger.GetLogger().WithField("lease_id", id).Info("租约已删除")
	s.notifier.notify(ctx, events.LeaseDeleted, id)
	return nil
}

// ========== 查询方法 ==========

// List 分页查询租约
func (s *LeaseService) List(ctx context.Context, filter models.LeaseFilter, page *pagination.PageParams) ([]models.Lease, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Lease{})

	if filter.UnitID != 0 {
		query = query.Where("unit_id = ?", filter.UnitID)
	}
	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.LandlordID != 0 {
		query = query.Where("landlord_id = ?", filter.LandlordID)
	}
	if filter.PaymentFrequency != "" {
		query = query.Where("payment_frequency = ?", filter.PaymentFrequency)
	}
	if filter.Active != nil {
		if *filter.Active {
			query = query.Where("terminated_at IS NULL")
		} else {
			query = query.Where("terminated_at IS NOT NULL")
		}
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"unit_id IN (SELECT id FROM units WHERE LOWER(unit_number) LIKE ?) OR "+
				"tenant_id IN (SELECT id FROM contacts WHERE LOWER(name) LIKE ?) OR "+
				"landlord_id IN (SELECT id FROM contacts WHERE LOWER(name) LIKE ?)",
			pattern, pattern, pattern)
	}

	var leases []models.Lease
	order := pagination.ParseOrdering(filter.Ordering, leaseOrdering, "start_date DESC")
	total, err := paginate(query, page, order, &leases, "Unit", "Tenant", "Landlord")
	if err != nil {
		return nil, 0, err
	}
	return leases, total, nil
}
