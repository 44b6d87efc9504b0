package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// DateLayout 租约日期格式
const DateLayout = "2006-01-02"

// PaymentFrequency 付款频率
type PaymentFrequency string

const (
	PaymentMonthly    PaymentFrequency = "MONTHLY"
	PaymentQuarterly  PaymentFrequency = "QUARTERLY"
	PaymentSemiAnnual PaymentFrequency = "SEMI_ANNUAL"
	PaymentAnnual     PaymentFrequency = "ANNUAL"
)

// PaymentFrequencies 全部付款频率，按周期从短到长
var PaymentFrequencies = []PaymentFrequency{
	PaymentMonthly,
	PaymentQuarterly,
	PaymentSemiAnnual,
	PaymentAnnual,
}

func (f PaymentFrequency) Valid() bool {
	switch f {
	case PaymentMonthly, PaymentQuarterly, PaymentSemiAnnual, PaymentAnnual:
		return true
	}
	return false
}

func (f PaymentFrequency) Label() string {
	switch f {
	case PaymentMonthly:
		return "Monthly"
	case PaymentQuarterly:
		return "Quarterly"
	case PaymentSemiAnnual:
		return "Semi-Annual"
	case PaymentAnnual:
		return "Annual"
	}
	return string(f)
}

// Lease 租约模型
type Lease struct {
	BaseModel
	UnitID           uint             `gorm:"not null;index" json:"unit_id"`
	TenantID         uint             `gorm:"not null;index" json:"tenant_id"`
	LandlordID       uint             `gorm:"not null;index" json:"landlord_id"`
	StartDate        datatypes.Date   `gorm:"not null;index" json:"start_date"`
	Duration         int              `gorm:"not null" json:"duration"` // 月
	RentAmount       float64          `gorm:"type:numeric(10,2);not null" json:"rent_amount"`
	PaymentFrequency PaymentFrequency `gorm:"size:15;not null;default:'MONTHLY'" json:"payment_frequency"`
	TerminatedAt     *time.Time       `gorm:"index" json:"terminated_at"`

	// 关联
	Unit     *Unit    `gorm:"foreignKey:UnitID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"unit,omitempty"`
	Tenant   *Contact `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"tenant,omitempty"`
	Landlord *Contact `gorm:"foreignKey:LandlordID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"landlord,omitempty"`
}

// TableName 指定表名
func (Lease) TableName() string {
	return "leases"
}

func (l *Lease) String() string {
	return fmt.Sprintf("Lease #%d (unit %d, tenant %d)", l.ID, l.UnitID, l.TenantID)
}

// Start 开始日期
func (l *Lease) Start() time.Time {
	return time.Time(l.StartDate)
}

// EndDate 结束日期 = 开始日期 + Duration 个月
func (l *Lease) EndDate() time.Time {
	return AddMonths(l.Start(), l.Duration)
}

// IsActive 未终止的租约视为有效，单元上至多一个
func (l *Lease) IsActive() bool {
	return l.TerminatedAt == nil
}

// LeaseTerms 租约条款
type LeaseTerms struct {
	StartDate        time.Time
	Duration         int
	RentAmount       float64
	PaymentFrequency PaymentFrequency
}

// NewLease 构造租约，租客和房东必须已经过类型收窄
func NewLease(unit *Unit, tenant Tenant, landlord Landlord, terms LeaseTerms) *Lease {
	freq := terms.PaymentFrequency
	if freq == "" {
		freq = PaymentMonthly
	}
	return &Lease{
		UnitID:           unit.ID,
		TenantID:         tenant.ID,
		LandlordID:       landlord.ID,
		StartDate:        datatypes.Date(terms.StartDate),
		Duration:         terms.Duration,
		RentAmount:       terms.RentAmount,
		PaymentFrequency: freq,
	}
}

// AddMonths 按自然月相加，目标月份天数不足时取月末
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// CreateLeaseRequest 创建租约请求
type CreateLeaseRequest struct {
	UnitID           uint             `json:"unit_id" binding:"required"`
	TenantID         uint             `json:"tenant_id" binding:"required"`
	LandlordID       uint             `json:"landlord_id" binding:"required"`
	StartDate        string           `json:"start_date" binding:"required,datetime=2006-01-02"`
	Duration         int              `json:"duration"`
	RentAmount       float64          `json:"rent_amount"`
	PaymentFrequency PaymentFrequency `json:"payment_frequency" binding:"omitempty,oneof=MONTHLY QUARTERLY SEMI_ANNUAL ANNUAL"`
}

// UpdateLeaseRequest 更新租约请求，nil 字段保持不变，合并后重新校验
type UpdateLeaseRequest struct {
	UnitID           *uint             `json:"unit_id"`
	TenantID         *uint             `json:"tenant_id"`
	LandlordID       *uint             `json:"landlord_id"`
	StartDate        *string           `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	Duration         *int              `json:"duration"`
	RentAmount       *float64          `json:"rent_amount"`
	PaymentFrequency *PaymentFrequency `json:"payment_frequency" binding:"omitempty,oneof=MONTHLY QUARTERLY SEMI_ANNUAL ANNUAL"`
}

// LeaseFilter 租约列表过滤条件
type LeaseFilter struct {
	UnitID           uint
	TenantID         uint
	LandlordID       uint
	PaymentFrequency PaymentFrequency
	Active           *bool
	Search           string
	Ordering         string
}
