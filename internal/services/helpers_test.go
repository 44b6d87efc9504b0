package services

import (
	"context"
	"path/filepath"
	"testing"

	"pms/internal/database"
	"pms/internal/models"
	"pms/pkg/config"
	"pms/pkg/events"
	"pms/pkg/pagination"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "pms_test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	broker    *events.MemoryBroker
	contacts  *ContactService
	units     *UnitService
	leases    *LeaseService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	broker := events.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })
	return &fixture{
		ctx:       context.Background(),
		db:        db,
		broker:    broker,
		contacts:  NewContactService(db, broker),
		units:     NewUnitService(db, broker),
		leases:    NewLeaseService(db, broker),
		dashboard: NewDashboardService(db),
	}
}

func (f *fixture) contact(t *testing.T, name string, typ models.ContactType) *models.Contact {
	t.Helper()
	c, err := f.contacts.Create(f.ctx, &models.CreateContactRequest{Name: name, ContactType: typ})
	require.NoError(t, err)
	return c
}

func (f *fixture) landlord(t *testing.T, name string) *models.Contact {
	return f.contact(t, name, models.ContactTypeLandlord)
}

func (f *fixture) tenant(t *testing.T, name string) *models.Contact {
	return f.contact(t, name, models.ContactTypeTenant)
}

func (f *fixture) unit(t *testing.T, number string, ownerID uint) *models.Unit {
	t.Helper()
	u, err := f.units.Create(f.ctx, &models.CreateUnitRequest{
		UnitNumber: number,
		Location:   "1 Main St",
		Value:      100000,
		OwnerID:    ownerID,
	})
	require.NoError(t, err)
	return u
}

func leaseRequest(unitID, tenantID, landlordID uint) *models.CreateLeaseRequest {
	return &models.CreateLeaseRequest{
		UnitID:           unitID,
		TenantID:         tenantID,
		LandlordID:       landlordID,
		StartDate:        "2025-01-01",
		Duration:         12,
		RentAmount:       1000,
		PaymentFrequency: models.PaymentMonthly,
	}
}

func (f *fixture) unitStatus(t *testing.T, id uint) models.UnitStatus {
	t.Helper()
	var u models.Unit
	require.NoError(t, f.db.First(&u, id).Error)
	return u.Status
}

func (f *fixture) leaseCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Lease{}).Count(&n).Error)
	return n
}

func pageOf(page, size int) *pagination.PageParams {
	return &pagination.PageParams{Page: page, PageSize: size}
}
