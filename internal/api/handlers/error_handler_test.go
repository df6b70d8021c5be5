package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"passport-admin-go/internal/domain/passport"
	"passport-admin-go/internal/pkg/assembler"
	"passport-admin-go/internal/pkg/circuitbreaker"
	"passport-admin-go/internal/pkg/fetch"
	"passport-admin-go/internal/pkg/recordstore"

	"github.com/stretchr/testify/assert"
)

func TestDetermineErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", passport.ErrRecordNotFound), http.StatusNotFound},
		{recordstore.ErrRecordNotFound, http.StatusNotFound},
		{passport.ErrNoDocuments, http.StatusNotFound},
		{fmt.Errorf("failed to download documents: %w", fetch.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%q: %w", "visas", passport.ErrUnknownTable), http.StatusBadRequest},
		{assembler.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: %w", assembler.ErrRasterize, circuitbreaker.ErrCircuitOpen), http.StatusServiceUnavailable},
		{fmt.Errorf("list: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, determineErrorStatus(tt.err), tt.err.Error())
	}
}
