package services

import (
	"testing"

	"pms/internal/models"
	apperrors "pms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitCreateRules(t *testing.T) {
	f := newFixture(t)
	a := f.landlord(t, "A")
	b := f.tenant(t, "B")

	u, err := f.units.Create(f.ctx, &models.CreateUnitRequest{UnitNumber: "U1", Location: "Here", OwnerID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusVacant, u.Status)
	assert.Equal(t, models.UnitTypeApartment, u.Type)

	cases := []struct {
		name string
		req  models.CreateUnitRequest
		want error
	}{
		{"owner missing", models.CreateUnitRequest{UnitNumber: "U2", Location: "x", OwnerID: 999}, apperrors.ErrNotFound},
		{"owner is tenant", models.CreateUnitRequest{UnitNumber: "U2", Location: "x", OwnerID: b.ID}, apperrors.ErrConflict},
		{"duplicate number", models.CreateUnitRequest{UnitNumber: "U1", Location: "x", OwnerID: a.ID}, apperrors.ErrConflict},
		{"negative value", models.CreateUnitRequest{UnitNumber: "U3", Location: "x", Value: -1, OwnerID: a.ID}, apperrors.ErrValidation},
		{"bad type", models.CreateUnitRequest{UnitNumber: "U3", Type: "CASTLE", Location: "x", OwnerID: a.ID}, apperrors.ErrValidation},
		{"missing location", models.CreateUnitRequest{UnitNumber: "U3", OwnerID: a.ID}, apperrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := f.units.Create(f.ctx, &req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUnitUpdateRules(t *testing.T) {
	f := newFixture(t)
	a := f.landlord(t, "A")
	other := f.landlord(t, "Other")
	b := f.tenant(t, "B")
	u1 := f.unit(t, "U1", a.ID)
	f.unit(t, "U2", a.ID)

	occupied := models.UnitStatusOccupied
	_, err := f.units.Update(f.ctx, u1.ID, &models.UpdateUnitRequest{Status: &occupied})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	dup := "U2"
	_, err = f.units.Update(f.ctx, u1.ID, &models.UpdateUnitRequest{UnitNumber: &dup})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// 空置时可以更换所有者
	updated, err := f.units.Update(f.ctx, u1.ID, &models.UpdateUnitRequest{OwnerID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.OwnerID)
	require.NotNil(t, updated.Owner)
	assert.Equal(t, "Other", updated.Owner.Name)

	_, err = f.leases.Create(f.ctx, leaseRequest(u1.ID, b.ID, other.ID))
	require.NoError(t, err)

	_, err = f.units.Update(f.ctx, u1.ID, &models.UpdateUnitRequest{OwnerID: &a.ID})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	vacant := models.UnitStatusVacant
	_, err = f.units.Update(f.ctx, u1.ID, &models.UpdateUnitRequest{Status: &vacant})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, models.UnitStatusOccupied, f.unitStatus(t, u1.ID))

	// 与租约状态一致的设置被接受
	_, err = f.units.Update(f.ctx, u1.ID, &models.UpdateUnitRequest{Status: &occupied})
	require.NoError(t, err)

	value := 320000.0
	location := "New place"
	updated, err = f.units.Update(f.ctx, u1.ID, &models.UpdateUnitRequest{Value: &value, Location: &location})
	require.NoError(t, err)
	assert.Equal(t, 320000.0, updated.Value)
	assert.Equal(t, "New place", updated.Location)

	_, err = f.units.Update(f.ctx, 999, &models.UpdateUnitRequest{Value: &value})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUnitOwnerChangeRejectedAfterTermination(t *testing.T) {
	f := newFixture(t)
	a := f.landlord(t, "A")
	a2 := f.landlord(t, "A2")
	b := f.tenant(t, "B")
	u := f.unit(t, "U1", a.ID)
	lease, err := f.leases.Create(f.ctx, leaseRequest(u.ID, b.ID, a.ID))
	require.NoError(t, err)
	_, err = f.leases.Terminate(f.ctx, lease.ID)
	require.NoError(t, err)

	// 已终止的租约仍然记录原房东
	_, err = f.units.Update(f.ctx, u.ID, &models.UpdateUnitRequest{OwnerID: &a2.ID})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	got, err := f.units.GetByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.OwnerID)

	// 租约仍可编辑
	rent := 1200.0
	updated, err := f.leases.Update(f.ctx, lease.ID, &models.UpdateLeaseRequest{RentAmount: &rent})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, updated.RentAmount)
	assert.Equal(t, updated.Unit.OwnerID, updated.LandlordID)

	// 删除租约后可以更换
	require.NoError(t, f.leases.Delete(f.ctx, lease.ID))
	got, err = f.units.Update(f.ctx, u.ID, &models.UpdateUnitRequest{OwnerID: &a2.ID})
	require.NoError(t, err)
	assert.Equal(t, a2.ID, got.OwnerID)
}

func TestUnitDeleteRejectedWhenLeased(t *testing.T) {
	f := newFixture(t)
	a := f.landlord(t, "A")
	b := f.tenant(t, "B")
	u := f.unit(t, "U1", a.ID)
	lease, err := f.leases.Create(f.ctx, leaseRequest(u.ID, b.ID, a.ID))
	require.NoError(t, err)

	assert.ErrorIs(t, f.units.Delete(f.ctx, u.ID), apperrors.ErrConflict)

	// 终止的租约仍然引用单元
	_, err = f.leases.Terminate(f.ctx, lease.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.units.Delete(f.ctx, u.ID), apperrors.ErrConflict)

	require.NoError(t, f.leases.Delete(f.ctx, lease.ID))
	require.NoError(t, f.units.Delete(f.ctx, u.ID))
	_, err = f.units.GetByID(f.ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUnitList(t *testing.T) {
	f := newFixture(t)
	a := f.landlord(t, "A")
	other := f.landlord(t, "Other")
	b := f.tenant(t, "B")
	u1 := f.unit(t, "B-2", a.ID)
	f.unit(t, "A-1", a.ID)
	_, err := f.units.Create(f.ctx, &models.CreateUnitRequest{
		UnitNumber: "C-3", Type: models.UnitTypeHouse, Location: "Riverside", Value: 5, OwnerID: other.ID,
	})
	require.NoError(t, err)
	_, err = f.leases.Create(f.ctx, leaseRequest(u1.ID, b.ID, a.ID))
	require.NoError(t, err)

	all, total, err := f.units.List(f.ctx, models.UnitFilter{}, pageOf(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "A-1", all[0].UnitNumber)
	require.NotNil(t, all[0].Owner)

	vacant, total, err := f.units.ListVacant(f.ctx, models.UnitFilter{}, pageOf(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, u := range vacant {
		assert.Equal(t, models.UnitStatusVacant, u.Status)
	}

	occupied, total, err := f.units.ListOccupied(f.ctx, models.UnitFilter{}, pageOf(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, u1.ID, occupied[0].ID)

	byOwner, _, err := f.units.List(f.ctx, models.UnitFilter{OwnerID: other.ID}, pageOf(1, 10))
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, "C-3", byOwner[0].UnitNumber)

	houses, _, err := f.units.List(f.ctx, models.UnitFilter{Type: models.UnitTypeHouse}, pageOf(1, 10))
	require.NoError(t, err)
	assert.Len(t, houses, 1)

	found, _, err := f.units.List(f.ctx, models.UnitFilter{Search: "riverSIDE"}, pageOf(1, 10))
	require.NoError(t, err)
	assert.Len(t, found, 1)

	byValue, _, err := f.units.List(f.ctx, models.UnitFilter{Ordering: "value"}, pageOf(1, 10))
	require.NoError(t, err)
	assert.Equal(t, "C-3", byValue[0].UnitNumber)
}
