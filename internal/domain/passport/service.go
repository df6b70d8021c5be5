package passport

import (
	"context"

	"passport-admin-go/internal/domain/record"
	"passport-admin-go/internal/pkg/assembler"
)

// Service is the operator workflow over applications and renewals.
// Tables are addressed by name ("applications", "renewals", or the singular form).
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	Refresh(ctx context.Context) (*Dashboard, error)
	View(ctx context.Context, table, id string) (*Details, error)
	Approve(ctx context.Context, table, id string) (record.Record, error)
	Decline(ctx context.Context, table, id string) (record.Record, error)
	GeneratePassport(ctx context.Context, table, id string) (*assembler.Document, error)
	DownloadDocuments(ctx context.Context, table, id string) (*Download, error)
}

type operatorCtxKey struct{}

// WithOperator tags ctx with the officer acting on a record. Status changes
// carry it on their audit log line.
func WithOperator(ctx context.Context, operator string) context.Context {
	if operator == "" {
		return ctx
	}
	return context.WithValue(ctx, operatorCtxKey{}, operator)
}

// OperatorFromContext returns the officer set by WithOperator, if any.
func OperatorFromContext(ctx context.Context) string {
	operator, _ := ctx.Value(operatorCtxKey{}).(string)
	return operator
}
