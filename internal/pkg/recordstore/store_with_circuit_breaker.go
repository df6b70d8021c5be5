package recordstore

import (
	"context"
	"errors"
	"time"

	"passport-admin-go/internal/domain/record"
	"passport-admin-go/internal/pkg/circuitbreaker"
	"passport-admin-go/internal/pkg/logger"
	"passport-admin-go/internal/pkg/metrics"
	"passport-admin-go/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StoreWithCircuitBreaker instruments a Store and fails fast while it is down.
// Calls are never retried.
type StoreWithCircuitBreaker struct {
	store Store
	cb    *circuitbreaker.CircuitBreaker
}

func NewStoreWithCircuitBreaker(store Store, cfg circuitbreaker.Config) *StoreWithCircuitBreaker {
	return &StoreWithCircuitBreaker{
		store: store,
		cb:    circuitbreaker.NewCircuitBreaker(cfg),
	}
}

func (s *StoreWithCircuitBreaker) List(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "RecordStore.List")
	defer span.End()
	span.SetAttributes(attribute.String("record.table", string(kind)))

	start := time.Now()
	var rows []record.Record
	err := s.cb.Execute(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.store.List(ctx, kind)
		return err
	})
	s.observe(ctx, "list", kind, start, err)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("record.count", len(rows)))
	return rows, nil
}

func (s *StoreWithCircuitBreaker) Update(ctx context.Context, kind record.Kind, id record.ID, patch record.Patch) error {
	ctx, span := tracing.StartSpan(ctx, "RecordStore.Update")
	defer span.End()
	span.SetAttributes(
		attribute.String("record.table", string(kind)),
		attribute.String("record.id", string(id)),
		attribute.String("record.status", string(patch.Status)),
	)

	start := time.Now()
	var missing error
	err := s.cb.Execute(ctx, func(ctx context.Context) error {
		err := s.store.Update(ctx, kind, id, patch)
		// a missing row is an answer, not an outage
		if errors.Is(err, ErrRecordNotFound) {
			missing = err
			return nil
		}
		return err
	})
	if err == nil {
		err = missing
	}
	s.observe(ctx, "update", kind, start, err)
	return err
}

func (s *StoreWithCircuitBreaker) observe(ctx context.Context, op string, kind record.Kind, start time.Time, err error) {
	metrics.RecordStoreRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordStoreRequestsTotal.WithLabelValues(op, string(kind), "error").Inc()
		tracing.RecordError(ctx, err)
		logger.Error("Record store request failed",
			zap.String("operation", op),
			zap.String("table", string(kind)),
			zap.Error(err))
		return
	}
	metrics.RecordStoreRequestsTotal.WithLabelValues(op, string(kind), "success").Inc()
}

func (s *StoreWithCircuitBreaker) State() circuitbreaker.State {
	return s.cb.State()
}

func (s *StoreWithCircuitBreaker) IsHealthy() bool {
	return s.cb.IsHealthy()
}

func (s *StoreWithCircuitBreaker) Name() string {
	return s.cb.Name()
}
