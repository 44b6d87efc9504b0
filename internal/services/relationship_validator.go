package services

import (
	"pms/internal/models"
	apperrors "pms/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipValidator 检查联系人、单元、租约之间的引用规则
//
// 所有方法都在调用方的事务句柄上执行，校验与写入共享同一快照。
type RelationshipValidator struct{}

func NewRelationshipValidator() *RelationshipValidator {
	return &RelationshipValidator{}
}

// LeaseParties 租约引用的三方
type LeaseParties struct {
	Unit     *models.Unit
	Tenant   *models.Contact
	Landlord *models.Contact
}

// ========== 租约校验 ==========

// ResolveLeaseParties 加载单元、租客、房东，单元行同时加锁
func (v *RelationshipValidator) ResolveLeaseParties(tx *gorm.DB, unitID, tenantID, landlordID uint) (*LeaseParties, error) {
	unit, err := v.LockUnit(tx, unitID)
	if err != nil {
		return nil, err
	}

	var tenant models.Contact
	if err := tx.First(&tenant, tenantID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("租客 %d 不存在", tenantID).WithField("tenant_id", "记录不存在")
		}
		return nil, err
	}

	var landlord models.Contact
	if err := tx.First(&landlord, landlordID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("房东 %d 不存在", landlordID).WithField("landlord_id", "记录不存在")
		}
		return nil, err
	}

	return &LeaseParties{Unit: unit, Tenant: &tenant, Landlord: &landlord}, nil
}

// ValidateLeaseParties 检查联系人类型和单元所有权
func (v *RelationshipValidator) ValidateLeaseParties(p *LeaseParties) (models.Tenant, models.Landlord, error) {
	tenant, ok := models.AsTenant(p.Tenant)
	if !ok {
		return models.Tenant{}, models.Landlord{}, apperrors.FieldValidation("tenant_id", "租客必须是TENANT类型的联系人")
	}
	landlord, ok := models.AsLandlord(p.Landlord)
	if !ok {
		return models.Tenant{}, models.Landlord{}, apperrors.FieldValidation("landlord_id", "房东必须是LANDLORD类型的联系人")
	}
	if p.Unit.OwnerID != landlord.ID {
		return models.Tenant{}, models.Landlord{}, apperrors.Conflict("房东不是该单元的所有者")
	}
	return tenant, landlord, nil
}

// ValidateLeaseTerms 检查租期和租金
func (v *RelationshipValidator) ValidateLeaseTerms(duration int, rent float64) error {
	var appErr *apperrors.AppError
	if duration <= 0 {
		appErr = apperrors.Validation("租约条款无效").WithField("duration", "租期必须大于0个月")
	}
	if rent <= 0 {
		if appErr == nil {
			appErr = apperrors.Validation("租约条款无效")
		}
		appErr.WithField("rent_amount", "租金必须大于0")
	}
	if appErr != nil {
		return appErr
	}
	return nil
}

// ========== 单元状态 ==========

// LockUnit 对单元行加行锁（SQLite 忽略锁子句，依靠单写者串行化）
func (v *RelationshipValidator) LockUnit(tx *gorm.DB, unitID uint) (*models.Unit, error) {
	var unit models.Unit
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&unit, unitID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("单元 %d 不存在", unitID).WithField("unit_id", "记录不存在")
		}
		return nil, err
	}
	return &unit, nil
}

// OccupyUnit 仅当单元仍为空置时标记为已占用
func (v *RelationshipValidator) OccupyUnit(tx *gorm.DB, unitID uint) error {
	result := tx.Model(&models.Unit{}).
		Where("id = ? AND status = ?", unitID, models.UnitStatusVacant).
		Update("status", models.UnitStatusOccupied)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Conflict("单元已被占用")
	}
	return nil
}

// ReleaseUnit 单元上没有其他有效租约时恢复为空置
func (v *RelationshipValidator) ReleaseUnit(tx *gorm.DB, unitID, exceptLeaseID uint) error {
	active, err := v.hasActiveLease(tx, unitID, exceptLeaseID)
	if err != nil {
		return err
	}
	if active {
		return nil
	}
	return tx.Model(&models.Unit{}).
		Where("id = ?", unitID).
		Update("status", models.UnitStatusVacant).Error
}

func (v *RelationshipValidator) hasActiveLease(tx *gorm.DB, unitID, exceptLeaseID uint) (bool, error) {
	var count int64
	query := tx.Model(&models.Lease{}).
		Where("unit_id = ? AND terminated_at IS NULL", unitID)
	if exceptLeaseID != 0 {
		query = query.Where("id <> ?", exceptLeaseID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ========== 单元与联系人 ==========

// EnsureLandlordOwner 解析单元所有者，必须是房东
func (v *RelationshipValidator) EnsureLandlordOwner(tx *gorm.DB, ownerID uint) (models.Landlord, error) {
	var owner models.Contact
	if err := tx.First(&owner, ownerID).Error; err != nil {
		if isNotFound(err) {
			return models.Landlord{}, apperrors.NotFound("所有者 %d 不存在", ownerID).WithField("owner_id", "记录不存在")
		}
		return models.Landlord{}, err
	}
	landlord, ok := models.AsLandlord(&owner)
	if !ok {
		return models.Landlord{}, apperrors.Conflict("单元所有者必须是房东")
	}
	return landlord, nil
}

// EnsureOwnerChangeAllowed 单元上存在其他房东的租约（含已终止）时不能更换所有者
func (v *RelationshipValidator) EnsureOwnerChangeAllowed(tx *gorm.DB, unit *models.Unit, newOwnerID uint) error {
	if unit.OwnerID == newOwnerID {
		return nil
	}
	var count int64
	err := tx.Model(&models.Lease{}).
		Where("unit_id = ? AND landlord_id <> ?", unit.ID, newOwnerID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("单元被 %d 个租约引用，不能更换所有者", count).WithField("owner_id", "租约房东必须是单元所有者")
	}
	return nil
}

// EnsureStatusConsistent 手动设置的状态必须与租约状态一致
func (v *RelationshipValidator) EnsureStatusConsistent(tx *gorm.DB, unit *models.Unit, status models.UnitStatus) error {
	if unit.Status == status {
		return nil
	}
	active, err := v.hasActiveLease(tx, unit.ID, 0)
	if err != nil {
		return err
	}
	if status == models.UnitStatusOccupied && !active {
		return apperrors.Conflict("单元没有有效租约，不能标记为已占用")
	}
	if status == models.UnitStatusVacant && active {
		return apperrors.Conflict("单元存在有效租约，不能标记为空置")
	}
	return nil
}

// EnsureUnitDeletable 被租约引用的单元不能删除
func (v *RelationshipValidator) EnsureUnitDeletable(tx *gorm.DB, unitID uint) error {
	var count int64
	if err := tx.Model(&models.Lease{}).Where("unit_id = ?", unitID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("单元被 %d 个租约引用，无法删除", count)
	}
	return nil
}

// contactReferences 统计联系人被单元和租约引用的次数
func (v *RelationshipValidator) contactReferences(tx *gorm.DB, contactID uint) (units, leases int64, err error) {
	if err = tx.Model(&models.Unit{}).Where("owner_id = ?", contactID).Count(&units).Error; err != nil {
		return
	}
	err = tx.Model(&models.Lease{}).
		Where("tenant_id = ? OR landlord_id = ?", contactID, contactID).
		Count(&leases).Error
	return
}

// EnsureContactDeletable 被引用的联系人不能删除
func (v *RelationshipValidator) EnsureContactDeletable(tx *gorm.DB, contactID uint) error {
	units, leases, err := v.contactReferences(tx, contactID)
	if err != nil {
		return err
	}
	if units > 0 {
		return apperrors.Conflict("联系人是 %d 个单元的所有者，无法删除", units)
	}
	if leases > 0 {
		return apperrors.Conflict("联系人被 %d 个租约引用，无法删除", leases)
	}
	return nil
}

// EnsureContactTypeChangeAllowed 被引用的联系人不能修改类型
func (v *RelationshipValidator) EnsureContactTypeChangeAllowed(tx *gorm.DB, contact *models.Contact, newType models.ContactType) error {
	if contact.ContactType == newType {
		return nil
	}
	units, leases, err := v.contactReferences(tx, contact.ID)
	if err != nil {
		return err
	}
	if units+leases > 0 {
		return apperrors.FieldValidation("contact_type", "联系人已被单元或租约引用，不能修改类型")
	}
	return nil
}
