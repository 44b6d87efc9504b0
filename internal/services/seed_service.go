package services

import (
	"context"

	"pms/internal/models"
	"pms/pkg/logger"

	"gorm.io/gorm"
)

// SeedService 写入演示数据
type SeedService struct {
	db       *gorm.DB
	contacts *ContactService
	units    *UnitService
	leases   *LeaseService
}

func NewSeedService(db *gorm.DB, contacts *ContactService, units *UnitService, leases *LeaseService) *SeedService {
	return &SeedService{db: db, contacts: contacts, units: units, leases: leases}
}

// SeedResult 写入的演示数据
type SeedResult struct {
	Skipped  bool
	Landlord *models.Contact
	Tenant   *models.Contact
	Unit     *models.Unit
	Lease    *models.Lease
}

// LoadSampleData 写入一组房东、租客、单元和租约，已存在时跳过
func (s *SeedService) LoadSampleData(ctx context.Context) (*SeedResult, error) {
	appLogger := logger.GetLogger()

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Contact{}).Where("name = ?", "John Doe").Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		appLogger.Info("演示数据已存在，跳过创建")
		return &SeedResult{Skipped: true}, nil
	}

	landlord, err := s.contacts.Create(ctx, &models.CreateContactRequest{
		Name:        "John Doe",
		ContactType: models.ContactTypeLandlord,
		Email:       "john.doe@example.com",
		Phone:       "555-123-4567",
		Address:     "123 Landlord St, Property City, PC 12345",
	})
	if err != nil {
		return nil, err
	}

	tenant, err := s.contacts.Create(ctx, &models.CreateContactRequest{
		Name:        "Jane Smith",
		ContactType: models.ContactTypeTenant,
		Email:       "jane.smith@example.com",
		Phone:       "555-765-4321",
		Address:     "456 Tenant Ave, Renter City, RC 54321",
	})
	if err != nil {
		return nil, err
	}

	unit, err := s.units.Create(ctx, &models.CreateUnitRequest{
		UnitNumber: "A1",
		Type:       models.UnitTypeApartment,
		Location:   "789 Property Blvd, Rental City, RC 67890",
		Value:      250000,
		OwnerID:    landlord.ID,
	})
	if err != nil {
		return nil, err
	}

	lease, err := s.leases.Create(ctx, &models.CreateLeaseRequest{
		UnitID:           unit.ID,
		TenantID:         tenant.ID,
		LandlordID:       landlord.ID,
		StartDate:        "2025-01-01",
		Duration:         12,
		RentAmount:       1500,
		PaymentFrequency: models.PaymentMonthly,
	})
	if err != nil {
		return nil, err
	}

	appLogger.Info("演示数据创建完成")
	return &SeedResult{Landlord: landlord, Tenant: tenant, Unit: unit, Lease: lease}, nil
}
