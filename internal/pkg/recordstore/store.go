package recordstore

import (
	"context"
	"errors"

	"passport-admin-go/internal/domain/record"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks Store

// ErrRecordNotFound is returned when an update matches no row.
var ErrRecordNotFound = errors.New("record not found")

// Store is the remote table service holding applications and renewals.
type Store interface {
	// List returns every row of the table, newest first.
	List(ctx context.Context, kind record.Kind) ([]record.Record, error)
	// Update applies a status patch to the row with the given id.
	Update(ctx context.Context, kind record.Kind, id record.ID, patch record.Patch) error
}
