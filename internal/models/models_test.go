package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		start  time.Time
		months int
		want   time.Time
	}{
		{date(2025, 1, 1), 12, date(2026, 1, 1)},
		{date(2025, 1, 31), 1, date(2025, 2, 28)},
		{date(2024, 1, 31), 1, date(2024, 2, 29)},
		{date(2025, 8, 31), 3, date(2025, 11, 30)},
		{date(2025, 11, 15), 3, date(2026, 2, 15)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AddMonths(tc.start, tc.months), "%s + %d", tc.start.Format(DateLayout), tc.months)
	}
}

func TestLeaseEndDateAndActive(t *testing.T) {
	l := &Lease{StartDate: datatypes.Date(date(2025, 1, 1)), Duration: 12}
	assert.Equal(t, date(2026, 1, 1), l.EndDate())
	assert.True(t, l.IsActive())

	now := time.Now()
	l.TerminatedAt = &now
	assert.False(t, l.IsActive())
}

func TestContactNarrowing(t *testing.T) {
	landlord := &Contact{BaseModel: BaseModel{ID: 1}, Name: "John Doe", ContactType: ContactTypeLandlord}
	tenant := &Contact{BaseModel: BaseModel{ID: 2}, Name: "Jane Smith", ContactType: ContactTypeTenant}

	l, ok := AsLandlord(landlord)
	assert.True(t, ok)
	assert.Equal(t, uint(1), l.ID)
	_, ok = AsLandlord(tenant)
	assert.False(t, ok)
	_, ok = AsLandlord(nil)
	assert.False(t, ok)

	tt, ok := AsTenant(tenant)
	assert.True(t, ok)
	assert.Equal(t, "Jane Smith", tt.Name)
	_, ok = AsTenant(landlord)
	assert.False(t, ok)
}

func TestNewLeaseDefaultsFrequency(t *testing.T) {
	l, _ := AsLandlord(&Contact{BaseModel: BaseModel{ID: 1}, ContactType: ContactTypeLandlord})
	tn, _ := AsTenant(&Contact{BaseModel: BaseModel{ID: 2}, ContactType: ContactTypeTenant})
	unit := &Unit{BaseModel: BaseModel{ID: 3}}

	lease := NewLease(unit, tn, l, LeaseTerms{StartDate: date(2025, 1, 1), Duration: 12, RentAmount: 1500})
	assert.Equal(t, uint(3), lease.UnitID)
	assert.Equal(t, uint(2), lease.TenantID)
	assert.Equal(t, uint(1), lease.LandlordID)
	assert.Equal(t, PaymentMonthly, lease.PaymentFrequency)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ContactTypeLandlord.Valid())
	assert.False(t, ContactType("OWNER").Valid())
	assert.True(t, UnitTypeCondo.Valid())
	assert.False(t, UnitType("CASTLE").Valid())
	assert.True(t, UnitStatusOccupied.Valid())
	assert.False(t, UnitStatus("MAINTENANCE").Valid())
	assert.True(t, PaymentSemiAnnual.Valid())
	assert.Equal(t, "Semi-Annual", PaymentSemiAnnual.Label())
	assert.Equal(t, "Condominium", UnitTypeCondo.Label())
}

func TestUserPassword(t *testing.T) {
	u := &User{}
	assert.NoError(t, u.SetPassword("s3cret"))
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))
}
