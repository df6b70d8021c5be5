package passport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"passport-admin-go/internal/domain/record"
	"passport-admin-go/internal/pkg/recordstore"

	"golang.org/x/sync/errgroup"
)

// Registry holds the last lists fetched from the record store.
// Local state changes only after the store has accepted a change.
type Registry struct {
	store recordstore.Store

	mu       sync.RWMutex
	lists    map[record.Kind][]record.Record
	loadedAt time.Time
}

func NewRegistry(store recordstore.Store) *Registry {
	return &Registry{store: store}
}

// Load fetches both tables concurrently and swaps them in only if both reads succeed.
func (r *Registry) Load(ctx context.Context) error {
	fetched := make([][]record.Record, len(record.Kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range record.Kinds {
		i, kind := i, kind
		g.Go(func() error {
			rows, err := r.store.List(gctx, kind)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", kind, err)
			}
			fetched[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	lists := make(map[record.Kind][]record.Record, len(record.Kinds))
	for i, kind := range record.Kinds {
		lists[kind] = fetched[i]
	}

	r.mu.Lock()
	r.lists = lists
	r.loadedAt = time.Now()
	r.mu.Unlock()
	return nil
}

func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lists != nil
}

func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// List returns a copy of the table in store order.
func (r *Registry) List(kind record.Kind) []record.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.lists[kind]
	out := make([]record.Record, len(src))
	copy(out, src)
	return out
}

func (r *Registry) Get(kind record.Kind, id record.ID) (record.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := indexOf(r.lists[kind], id); i >= 0 {
		return r.lists[kind][i], nil
	}
	return record.Record{}, fmt.Errorf("%s %s: %w", kind, id, ErrRecordNotFound)
}

// SetStatus writes the status to the store, then mirrors it locally.
func (r *Registry) SetStatus(ctx context.Context, kind record.Kind, id record.ID, status record.Status, at time.Time) (record.Record, error) {
	if _, err := r.Get(kind, id); err != nil {
		return record.Record{}, err
	}

	err := r.store.Update(ctx, kind, id, record.Patch{Status: status, UpdatedAt: at.UTC()})
	if errors.Is(err, recordstore.ErrRecordNotFound) {
		return record.Record{}, fmt.Errorf("%s %s: %w: %w", kind, id, ErrRecordNotFound, err)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to update %s %s: %w", kind, id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.lists[kind]
	i := indexOf(list, id)
	if i < 0 {
		// a concurrent refresh dropped the row; the store already has the change
		return record.Record{}, fmt.Errorf("%s %s: %w", kind, id, ErrRecordNotFound)
	}
	list[i].Status = status
	return list[i], nil
}

func indexOf(list []record.Record, id record.ID) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
