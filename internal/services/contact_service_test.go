package services

import (
	"testing"

	"pms/internal/models"
	apperrors "pms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactCreateDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)

	c, err := f.contacts.Create(f.ctx, &models.CreateContactRequest{Name: "  Jane  ", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Jane", c.Name)
	assert.Equal(t, models.ContactTypeTenant, c.ContactType)

	_, err = f.contacts.Create(f.ctx, &models.CreateContactRequest{Name: "Bad", Email: "not-an-email"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// 首尾空白先去除再校验
	padded, err := f.contacts.Create(f.ctx, &models.CreateContactRequest{Name: "Padded", Email: " a@b.com "})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", padded.Email)

	_, err = f.contacts.Create(f.ctx, &models.CreateContactRequest{Name: "Bad", Email: " not-an-email "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.contacts.Create(f.ctx, &models.CreateContactRequest{Name: "Bad", ContactType: "OWNER"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.contacts.Create(f.ctx, &models.CreateContactRequest{Name: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestContactGetAndUpdate(t *testing.T) {
	f := newFixture(t)
	c := f.tenant(t, "Jane")

	_, err := f.contacts.GetByID(f.ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	phone := "555-0000"
	updated, err := f.contacts.Update(f.ctx, c.ID, &models.UpdateContactRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0000", updated.Phone)
	assert.Equal(t, "Jane", updated.Name)

	bad := "nope"
	_, err = f.contacts.Update(f.ctx, c.ID, &models.UpdateContactRequest{Email: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// 未被引用时可以修改类型
	landlord := models.ContactTypeLandlord
	updated, err = f.contacts.Update(f.ctx, c.ID, &models.UpdateContactRequest{ContactType: &landlord})
	require.NoError(t, err)
	assert.Equal(t, models.ContactTypeLandlord, updated.ContactType)

	_, err = f.contacts.Update(f.ctx, 999, &models.UpdateContactRequest{Phone: &phone})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestContactTypeChangeRejectedWhenReferenced(t *testing.T) {
	f := newFixture(t)
	a := f.landlord(t, "A")
	f.unit(t, "U1", a.ID)

	tenant := models.ContactTypeTenant
	_, err := f.contacts.Update(f.ctx, a.ID, &models.UpdateContactRequest{ContactType: &tenant})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	got, err := f.contacts.GetByID(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContactTypeLandlord, got.ContactType)
}

func TestContactDeleteRejectedWhenReferenced(t *testing.T) {
	f := newFixture(t)
	a := f.landlord(t, "A")
	b := f.tenant(t, "B")
	u := f.unit(t, "U1", a.ID)
	lease, err := f.leases.Create(f.ctx, leaseRequest(u.ID, b.ID, a.ID))
	require.NoError(t, err)

	assert.ErrorIs(t, f.contacts.Delete(f.ctx, a.ID), apperrors.ErrConflict)
	assert.ErrorIs(t, f.contacts.Delete(f.ctx, b.ID), apperrors.ErrConflict)

	// 租约删除后租客可以删除
	require.NoError(t, f.leases.Delete(f.ctx, lease.ID))
	require.NoError(t, f.contacts.Delete(f.ctx, b.ID))
	_, err = f.contacts.GetByID(f.ctx, b.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, f.contacts.Delete(f.ctx, 999), apperrors.ErrNotFound)
}

func TestContactList(t *testing.T) {
	f := newFixture(t)
	f.landlord(t, "Zed Landlord")
	f.landlord(t, "Amy Landlord")
	f.tenant(t, "Bob Tenant")
	_, err := f.contacts.Create(f.ctx, &models.CreateContactRequest{Name: "Cat", Email: "cat@Example.com"})
	require.NoError(t, err)

	all, total, err := f.contacts.List(f.ctx, models.ContactFilter{}, pageOf(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, "Amy Landlord", all[0].Name)

	landlords, total, err := f.contacts.ListLandlords(f.ctx, models.ContactFilter{}, pageOf(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, c := range landlords {
		assert.Equal(t, models.ContactTypeLandlord, c.ContactType)
	}

	tenants, _, err := f.contacts.ListTenants(f.ctx, models.ContactFilter{Ordering: "-name"}, pageOf(1, 10))
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "Cat", tenants[0].Name)

	found, _, err := f.contacts.List(f.ctx, models.ContactFilter{Search: "EXAMPLE"}, pageOf(1, 10))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Cat", found[0].Name)

	// 分页
	second, total, err := f.contacts.List(f.ctx, models.ContactFilter{}, pageOf(2, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, second, 1)
}
