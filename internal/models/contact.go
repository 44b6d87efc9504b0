package models

import (
	"fmt"
)

// ContactType 联系人类型，只有房东和租客两种
type ContactType string

const (
	ContactTypeLandlord ContactType = "LANDLORD"
	ContactTypeTenant   ContactType = "TENANT"
)

// Valid 检查类型是否合法
func (t ContactType) Valid() bool {
	return t == ContactTypeLandlord || t == ContactTypeTenant
}

func (t ContactType) IsLandlord() bool { return t == ContactTypeLandlord }

func (t ContactType) IsTenant() bool { return t == ContactTypeTenant }

// Label 展示名称
func (t ContactType) Label() string {
	switch t {
	case ContactTypeLandlord:
		return "Landlord"
	case ContactTypeTenant:
		return "Tenant"
	default:
		return string(t)
	}
}

// Contact 联系人模型（房东或租客）
type Contact struct {
	BaseModel
	Name        string      `gorm:"size:255;not null;index" json:"name"`
	ContactType ContactType `gorm:"size:10;not null;default:'TENANT';index" json:"contact_type"`
	Email       string      `gorm:"size:254" json:"email"`
	Phone       string      `gorm:"size:20" json:"phone"`
	Address     string      `gorm:"type:text" json:"address"`
}

// TableName 指定表名
func (Contact) TableName() string {
	return "contacts"
}

func (c *Contact) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ContactType.Label())
}

// Landlord 已确认为房东的联系人，单元所有者和租约房东只接受该类型
type Landlord struct {
	*Contact
}

// Tenant 已确认为租客的联系人
type Tenant struct {
	*Contact
}

// AsLandlord 将联系人收窄为房东
func AsLandlord(c *Contact) (Landlord, bool) {
	if c == nil || c.ContactType != ContactTypeLandlord {
		return Landlord{}, false
	}
	return Landlord{Contact: c}, true
}

// AsTenant 将联系人收窄为租客
func AsTenant(c *Contact) (Tenant, bool) {
	if c == nil || c.ContactType != ContactTypeTenant {
		return Tenant{}, false
	}
	return Tenant{Contact: c}, true
}

// CreateContactRequest 创建联系人请求
type CreateContactRequest struct {
	Name        string      `json:"name" binding:"required,max=255"`
	ContactType ContactType `json:"contact_type" binding:"omitempty,oneof=LANDLORD TENANT"`
	Email       string      `json:"email" binding:"omitempty,max=254"`
	Phone       string      `json:"phone" binding:"max=20"`
	Address     string      `json:"address"`
}

// UpdateContactRequest 更新联系人请求，nil 字段保持不变
type UpdateContactRequest struct {
	Name        *string      `json:"name" binding:"omitempty,min=1,max=255"`
	ContactType *ContactType `json:"contact_type" binding:"omitempty,oneof=LANDLORD TENANT"`
	Email       *string      `json:"email" binding:"omitempty,max=254"`
	Phone       *string      `json:"phone" binding:"omitempty,max=20"`
	Address     *string      `json:"address"`
}

// ContactFilter 联系人列表过滤条件
type ContactFilter struct {
	ContactType ContactType
	Search      string
	Ordering    string
}
