package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"pms/internal/models"

	"gorm.io/gorm"
)

// DashboardSummary 仪表盘统计
type DashboardSummary struct {
	TotalContacts   int64                               `json:"total_contacts"`
	TotalLandlords  int64                               `json:"total_landlords"`
	TotalTenants    int64                               `json:"total_tenants"`
	TotalUnits      int64                               `json:"total_units"`
	VacantUnits     int64                               `json:"vacant_units"`
	OccupiedUnits   int64                               `json:"occupied_units"`
	TotalLeases     int64                               `json:"total_leases"`
	ActiveLeases    int64                               `json:"active_leases"`
	TotalRentValue  float64                             `json:"total_rent_value"`
	AverageRent     float64                             `json:"average_rent"`
	OccupancyRate   float64                             `json:"occupancy_rate"`
	RentByFrequency map[models.PaymentFrequency]float64 `json:"rent_by_frequency"`
	Landlords       []LandlordUnits                     `json:"landlords"`
	LatestLease     *models.Lease                       `json:"latest_lease"`
	GeneratedAt     time.Time                           `json:"generated_at"`
}

// LandlordUnits 房东及其名下单元数
type LandlordUnits struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	UnitsCount int64  `json:"units_count"`
}

// SummaryCounts 原始计数及样例数据之间的关系
type SummaryCounts struct {
	Counts        map[string]int64 `json:"counts"`
	Landlord      *models.Contact  `json:"landlord"`
	Tenant        *models.Contact  `json:"tenant"`
	Unit          *models.Unit     `json:"unit"`
	Lease         *models.Lease    `json:"lease"`
	Relationships []Relationship   `json:"relationships"`
}

// Relationship 样例数据之间的一条关系
type Relationship struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// snapshot 在单个只读事务中执行，PostgreSQL 下使用可重复读隔离
func (s *DashboardService) snapshot(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return db.Transaction(fn)
}

type groupCount struct {
	Grp   string
	Count int64
}

type groupSum struct {
	Grp   string
	Total float64
}

// Summarize 计算仪表盘统计
func (s *DashboardService) Summarize(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{
		RentByFrequency: make(map[models.PaymentFrequency]float64, len(models.PaymentFrequencies)),
		Landlords:       []LandlordUnits{},
	}
	for _, f := range models.PaymentFrequencies {
		summary.RentByFrequency[f] = 0
	}

	err := s.snapshot(ctx, func(tx *gorm.DB) error {
		// 联系人
		var contactCounts []groupCount
		if err := tx.Model(&models.Contact{}).
			Select("contact_type AS grp, COUNT(*) AS count").
			Group("contact_type").
			Scan(&contactCounts).Error; err != nil {
			return err
		}
		for _, c := range contactCounts {
			summary.TotalContacts += c.Count
			switch models.ContactType(c.Grp) {
			case models.ContactTypeLandlord:
				summary.TotalLandlords = c.Count
			case models.ContactTypeTenant:
				summary.TotalTenants = c.Count
			}
		}

		// 单元
		var unitCounts []groupCount
		if err := tx.Model(&models.Unit{}).
			Select("status AS grp, COUNT(*) AS count").
			Group("status").
			Scan(&unitCounts).Error; err != nil {
			return err
		}
		for _, c := range unitCounts {
			summary.TotalUnits += c.Count
			switch models.UnitStatus(c.Grp) {
			case models.UnitStatusVacant:
				summary.VacantUnits = c.Count
			case models.UnitStatusOccupied:
				summary.OccupiedUnits = c.Count
			}
		}

		// 租约
		if err := tx.Model(&models.Lease{}).Count(&summary.TotalLeases).Error; err != nil {
			return err
		}
		var rentSums []groupSum
		if err := tx.Model(&models.Lease{}).
			Select("payment_frequency AS grp, COALESCE(SUM(rent_amount), 0) AS total").
			Where("terminated_at IS NULL").
			Group("payment_frequency").
			Scan(&rentSums).Error; err != nil {
			return err
		}
		for _, r := range rentSums {
			summary.RentByFrequency[models.PaymentFrequency(r.Grp)] = roundMoney(r.Total)
			summary.TotalRentValue += r.Total
		}
		if err := tx.Model(&models.Lease{}).
			Where("terminated_at IS NULL").
			Count(&summary.ActiveLeases).Error; err != nil {
			return err
		}

		// 房东名下单元数
		if err := tx.Model(&models.Contact{}).
			Select("contacts.id AS id, contacts.name AS name, COUNT(units.id) AS units_count").
			Joins("LEFT JOIN units ON units.owner_id = contacts.id").
			Where("contacts.contact_type = ?", models.ContactTypeLandlord).
			Group("contacts.id, contacts.name").
			Order("contacts.name, contacts.id").
			Scan(&summary.Landlords).Error; err != nil {
			return err
		}

		var latest []models.Lease
		if err := tx.Preload("Unit").Preload("Tenant").Preload("Landlord").
			Order("created_at DESC, id DESC").
			Limit(1).
			Find(&latest).Error; err != nil {
			return err
		}
		if len(latest) > 0 {
			summary.LatestLease = &latest[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.TotalRentValue = roundMoney(summary.TotalRentValue)
	if summary.ActiveLeases > 0 {
		summary.AverageRent = roundMoney(summary.TotalRentValue / float64(summary.ActiveLeases))
	}
	if summary.TotalUnits > 0 {
		summary.OccupancyRate = math.Round(float64(summary.OccupiedUnits)/float64(summary.TotalUnits)*10000) / 10000
	}
	summary.GeneratedAt = time.Now().UTC()
	return summary, nil
}

// Counts 原始计数和首条房东、租客、单元、租约
func (s *DashboardService) Counts(ctx context.Context) (*SummaryCounts, error) {
	out := &SummaryCounts{
		Counts:        make(map[string]int64),
		Relationships: []Relationship{},
	}

	err := s.snapshot(ctx, func(tx *gorm.DB) error {
		counters := []struct {
			name  string
			query *gorm.DB
		}{
			{"contacts", tx.Model(&models.Contact{})},
			{"landlords", tx.Model(&models.Contact{}).Where("contact_type = ?", models.ContactTypeLandlord)},
			{"tenants", tx.Model(&models.Contact{}).Where("contact_type = ?", models.ContactTypeTenant)},
			{"units", tx.Model(&models.Unit{})},
			{"leases", tx.Model(&models.Lease{})},
		}
		for _, c := range counters {
			var n int64
			if err := c.query.Count(&n).Error; err != nil {
				return err
			}
			out.Counts[c.name] = n
		}

		var err error
		if out.Landlord, err = firstOrNil[models.Contact](tx.Where("contact_type = ?", models.ContactTypeLandlord)); err != nil {
			return err
		}
		if out.Tenant, err = firstOrNil[models.Contact](tx.Where("contact_type = ?", models.ContactTypeTenant)); err != nil {
			return err
		}
		if out.Unit, err = firstOrNil[models.Unit](tx.Preload("Owner")); err != nil {
			return err
		}
		if out.Lease, err = firstOrNil[models.Lease](tx.Preload("Unit").Preload("Tenant").Preload("Landlord")); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Landlord != nil && out.Unit != nil {
		out.Relationships = append(out.Relationships, Relationship{
			Type: "Landlord owns Unit",
			From: fmt.Sprintf("Landlord: %s", out.Landlord.Name),
			To:   fmt.Sprintf("Unit: %s", out.Unit.UnitNumber),
		})
	}
	if out.Tenant != nil && out.Lease != nil && out.Unit != nil {
		out.Relationships = append(out.Relationships, Relationship{
			Type: "Tenant leases Unit",
			From: fmt.Sprintf("Tenant: %s", out.Tenant.Name),
			To:   fmt.Sprintf("Unit: %s", out.Unit.UnitNumber),
		})
	}
	if out.Landlord != nil && out.Lease != nil && out.Tenant != nil {
		out.Relationships = append(out.Relationships, Relationship{
			Type: "Landlord leases to Tenant",
			From: fmt.Sprintf("Landlord: %s", out.Landlord.Name),
			To:   fmt.Sprintf("Tenant: %s", out.Tenant.Name),
		})
	}
	return out, nil
}

func firstOrNil[T any](query *gorm.DB) (*T, error) {
	var rows []T
	if err := query.Order("id").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
