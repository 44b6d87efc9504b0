package models

import (
	"fmt"
)

// UnitType 单元类型
type UnitType string

const (
	UnitTypeApartment  UnitType = "APARTMENT"
	UnitTypeHouse      UnitType = "HOUSE"
	UnitTypeCondo      UnitType = "CONDO"
	UnitTypeCommercial UnitType = "COMMERCIAL"
	UnitTypeOther      UnitType = "OTHER"
)

func (t UnitType) Valid() bool {
	switch t {
	case UnitTypeApartment, UnitTypeHouse, UnitTypeCondo, UnitTypeCommercial, UnitTypeOther:
		return true
	}
	return false
}

func (t UnitType) Label() string {
	switch t {
	case UnitTypeApartment:
		return "Apartment"
	case UnitTypeHouse:
		return "House"
	case UnitTypeCondo:
		return "Condominium"
	case UnitTypeCommercial:
		return "Commercial"
	case UnitTypeOther:
		return "Other"
	}
	return string(t)
}

// UnitStatus 单元状态，由租约写入事务维护
type UnitStatus string

const (
	UnitStatusVacant   UnitStatus = "VACANT"
	UnitStatusOccupied UnitStatus = "OCCUPIED"
)

func (s UnitStatus) Valid() bool {
	return s == UnitStatusVacant || s == UnitStatusOccupied
}

func (s UnitStatus) Label() string {
	switch s {
	case UnitStatusVacant:
		return "Vacant"
	case UnitStatusOccupied:
		return "Occupied"
	}
	return string(s)
}

// Unit 出租单元模型
type Unit struct {
	BaseModel
	UnitNumber string     `gorm:"size:50;not null;uniqueIndex" json:"unit_number"`
	Type       UnitType   `gorm:"size:15;not null;default:'APARTMENT';index" json:"type"`
	Location   string     `gorm:"size:255;not null" json:"location"`
	Value      float64    `gorm:"type:numeric(12,2);not null;default:0" json:"value"`
	Status     UnitStatus `gorm:"size:15;not null;default:'VACANT';index" json:"status"`
	OwnerID    uint       `gorm:"not null;index" json:"owner_id"`

	// 关联
	Owner *Contact `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`
}

// TableName 指定表名
func (Unit) TableName() string {
	return "units"
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s (%s - %s)", u.UnitNumber, u.Type.Label(), u.Status.Label())
}

// AssignOwner 设置所有者，只接受房东
func (u *Unit) AssignOwner(owner Landlord) {
	u.OwnerID = owner.ID
	u.Owner = owner.Contact
}

// CreateUnitRequest 创建单元请求
type CreateUnitRequest struct {
	UnitNumber string   `json:"unit_number" binding:"required,max=50"`
	Type       UnitType `json:"type" binding:"omitempty,oneof=APARTMENT HOUSE CONDO COMMERCIAL OTHER"`
	Location   string   `json:"location" binding:"required,max=255"`
	Value      float64  `json:"value"`
	OwnerID    uint     `json:"owner_id" binding:"required"`
}

// UpdateUnitRequest 更新单元请求，nil 字段保持不变
type UpdateUnitRequest struct {
	UnitNumber *string     `json:"unit_number" binding:"omitempty,min=1,max=50"`
	Type       *UnitType   `json:"type" binding:"omitempty,oneof=APARTMENT HOUSE CONDO COMMERCIAL OTHER"`
	Location   *string     `json:"location" binding:"omitempty,min=1,max=255"`
	Value      *float64    `json:"value"`
	Status     *UnitStatus `json:"status" binding:"omitempty,oneof=VACANT OCCUPIED"`
	OwnerID    *uint       `json:"owner_id"`
}

// UnitFilter 单元列表过滤条件
type UnitFilter struct {
	Status   UnitStatus
	Type     UnitType
	OwnerID  uint
	Search   string
	Ordering string
}
