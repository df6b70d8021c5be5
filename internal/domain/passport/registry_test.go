package passport

import (
	"context"
	"errors"
	"testing"
	"time"

	"passport-admin-go/internal/domain/record"
	"passport-admin-go/internal/pkg/recordstore"
	"passport-admin-go/internal/pkg/recordstore/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	sampleApps = []record.Record{
		{ID: "2", FullName: "Thabo Mokoena", PassportType: "64 pages"},
		{ID: "1", FullName: "Palesa Nthati", PassportType: "32 pages", Status: record.StatusApproved},
	}
	sampleRenewals = []record.Record{
		{ID: "9", Name: "Lineo", Surname: "Mosala", PassportNumber: "RA123"},
	}
)

func loadedRegistry(t *testing.T, store *mocks.MockStore) *Registry {
	t.Helper()
	store.EXPECT().List(gomock.Any(), record.KindApplications).Return(cloneRecords(sampleApps), nil)
	store.EXPECT().List(gomock.Any(), record.KindRenewals).Return(cloneRecords(sampleRenewals), nil)
	r := NewRegistry(store)
	require.NoError(t, r.Load(context.Background()))
	return r
}

func cloneRecords(in []record.Record) []record.Record {
	return append([]record.Record(nil), in...)
}

func TestRegistry_Load(t *testing.T) {
	store := mocks.NewMockStore(gomock.NewController(t))
	r := NewRegistry(store)
	assert.False(t, r.Loaded())

	r = loadedRegistry(t, store)
	assert.True(t, r.Loaded())
	assert.False(t, r.LoadedAt().IsZero())
	assert.Equal(t, sampleApps, r.List(record.KindApplications))
	assert.Equal(t, sampleRenewals, r.List(record.KindRenewals))
}

func TestRegistry_LoadIsAllOrNothing(t *testing.T) {
	store := mocks.NewMockStore(gomock.NewController(t))
	r := loadedRegistry(t, store)

	store.EXPECT().List(gomock.Any(), record.KindApplications).
		Return([]record.Record{{ID: "100"}}, nil).AnyTimes()
	store.EXPECT().List(gomock.Any(), record.KindRenewals).
		Return(nil, errors.New("timeout")).AnyTimes()

	err := r.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renewals")

	assert.Equal(t, sampleApps, r.List(record.KindApplications), "previous lists are kept")
	assert.Equal(t, sampleRenewals, r.List(record.KindRenewals))
}

func TestRegistry_ListReturnsCopy(t *testing.T) {
	store := mocks.NewMockStore(gomock.NewController(t))
	r := loadedRegistry(t, store)

	list := r.List(record.KindApplications)
	list[0].FullName = "changed"
	assert.Equal(t, "Thabo Mokoena", r.List(record.KindApplications)[0].FullName)
}

func TestRegistry_Get(t *testing.T) {
	store := mocks.NewMockStore(gomock.NewController(t))
	r := loadedRegistry(t, store)

	rec, err := r.Get(record.KindRenewals, "9")
	require.NoError(t, err)
	assert.Equal(t, "RA123", rec.PassportNumber)

	_, err = r.Get(record.KindApplications, "9")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRegistry_SetStatus(t *testing.T) {
	store := mocks.NewMockStore(gomock.NewController(t))
	r := loadedRegistry(t, store)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("SAST", 2*60*60))

	store.EXPECT().
		Update(gomock.Any(), record.KindApplications, record.ID("2"), record.Patch{Status: record.StatusDeclined, UpdatedAt: at.UTC()}).
		Return(nil)

	rec, err := r.SetStatus(context.Background(), record.KindApplications, "2", record.StatusDeclined, at)
	require.NoError(t, err)
	assert.Equal(t, record.StatusDeclined, rec.Status)

	list := r.List(record.KindApplications)
	require.Len(t, list, 2)
	assert.Equal(t, record.ID("2"), list[0].ID, "order is preserved")
	assert.Equal(t, record.StatusDeclined, list[0].Status)
	assert.Equal(t, "Thabo Mokoena", list[0].FullName)
	assert.Empty(t, list[0].UpdatedAt, "only the status is mirrored")
	assert.Equal(t, record.StatusApproved, list[1].Status)
}

func TestRegistry_SetStatusFailureLeavesStateUnchanged(t *testing.T) {
	store := mocks.NewMockStore(gomock.NewController(t))
	r := loadedRegistry(t, store)

	store.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("permission denied"))

	_, err := r.SetStatus(context.Background(), record.KindRenewals, "9", record.StatusApproved, time.Now())
	require.Error(t, err)
	assert.Equal(t, sampleRenewals, r.List(record.KindRenewals))
}

func TestRegistry_SetStatusUnknownRecord(t *testing.T) {
	store := mocks.NewMockStore(gomock.NewController(t))
	r := loadedRegistry(t, store)

	_, err := r.SetStatus(context.Background(), record.KindRenewals, "404", record.StatusApproved, time.Now())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRegistry_SetStatusRowGoneRemotely(t *testing.T) {
	store := mocks.NewMockStore(gomock.NewController(t))
	r := loadedRegistry(t, store)

	store.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(recordstore.ErrRecordNotFound)

	_, err := r.SetStatus(context.Background(), record.KindApplications, "1", record.StatusDeclined, time.Now())
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, err, recordstore.ErrRecordNotFound)
	assert.Equal(t, record.StatusApproved, r.List(record.KindApplications)[1].Status)
}
