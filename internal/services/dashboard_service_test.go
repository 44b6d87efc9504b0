package services

import (
	"testing"

	"pms/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardEmpty(t *testing.T) {
	f := newFixture(t)

	s, err := f.dashboard.Summarize(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, s.TotalUnits)
	assert.Zero(t, s.OccupancyRate)
	assert.Zero(t, s.AverageRent)
	assert.Nil(t, s.LatestLease)
	assert.Empty(t, s.Landlords)
	assert.Len(t, s.RentByFrequency, len(models.PaymentFrequencies))
}

func TestDashboardScenario(t *testing.T) {
	f := newFixture(t)
	a := f.landlord(t, "A")
	b := f.tenant(t, "B")
	u1 := f.unit(t, "U1", a.ID)

	lease, err := f.leases.Create(f.ctx, leaseRequest(u1.ID, b.ID, a.ID))
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusOccupied, f.unitStatus(t, u1.ID))

	s, err := f.dashboard.Summarize(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.OccupiedUnits)
	assert.Equal(t, int64(0), s.VacantUnits)
	assert.Equal(t, 1000.0, s.TotalRentValue)
	assert.Equal(t, 1000.0, s.AverageRent)
	assert.Equal(t, 1.0, s.OccupancyRate)
	assert.Equal(t, int64(2), s.TotalContacts)
	assert.Equal(t, int64(1), s.TotalLandlords)
	assert.Equal(t, int64(1), s.TotalTenants)
	assert.Equal(t, 1000.0, s.RentByFrequency[models.PaymentMonthly])
	require.NotNil(t, s.LatestLease)
	assert.Equal(t, lease.ID, s.LatestLease.ID)
	require.Len(t, s.Landlords, 1)
	assert.Equal(t, int64(1), s.Landlords[0].UnitsCount)
}

func TestDashboardInvariantsAcrossWrites(t *testing.T) {
	f := newFixture(t)
	a := f.landlord(t, "A")
	f.landlord(t, "No Units")
	b := f.tenant(t, "B")
	c := f.tenant(t, "C")
	u1 := f.unit(t, "U1", a.ID)
	u2 := f.unit(t, "U2", a.ID)
	f.unit(t, "U3", a.ID)

	check := func() *DashboardSummary {
		s, err := f.dashboard.Summarize(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, s.TotalUnits, s.OccupiedUnits+s.VacantUnits)
		assert.Equal(t, s.ActiveLeases, s.OccupiedUnits)
		return s
	}
	check()

	l1, err := f.leases.Create(f.ctx, leaseRequest(u1.ID, b.ID, a.ID))
	require.NoError(t, err)
	req := leaseRequest(u2.ID, c.ID, a.ID)
	req.RentAmount = 2000.5
	req.PaymentFrequency = models.PaymentQuarterly
	_, err = f.leases.Create(f.ctx, req)
	require.NoError(t, err)

	s := check()
	assert.Equal(t, 3000.5, s.TotalRentValue)
	assert.Equal(t, 1500.25, s.AverageRent)
	assert.Equal(t, 0.6667, s.OccupancyRate)

	_, err = f.leases.Terminate(f.ctx, l1.ID)
	require.NoError(t, err)
	s = check()
	assert.Equal(t, int64(2), s.TotalLeases)
	assert.Equal(t, int64(1), s.ActiveLeases)
	assert.Equal(t, 0.0, s.RentByFrequency[models.PaymentMonthly])

	require.Len(t, s.Landlords, 2)
	assert.Equal(t, "A", s.Landlords[0].Name)
	assert.Equal(t, int64(3), s.Landlords[0].UnitsCount)
	assert.Equal(t, int64(0), s.Landlords[1].UnitsCount)
}

func TestSummaryCounts(t *testing.T) {
	f := newFixture(t)

	empty, err := f.dashboard.Counts(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Relationships)
	assert.Nil(t, empty.Landlord)

	a := f.landlord(t, "John Doe")
	b := f.tenant(t, "Jane Smith")
	u := f.unit(t, "A1", a.ID)
	_, err = f.leases.Create(f.ctx, leaseRequest(u.ID, b.ID, a.ID))
	require.NoError(t, err)

	out, err := f.dashboard.Counts(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Counts["contacts"])
	assert.Equal(t, int64(1), out.Counts["landlords"])
	assert.Equal(t, int64(1), out.Counts["leases"])
	require.Len(t, out.Relationships, 3)
	assert.Equal(t, "Landlord: John Doe", out.Relationships[0].From)
	assert.Equal(t, "Unit: A1", out.Relationships[1].To)
	require.NotNil(t, out.Unit.Owner)
}
