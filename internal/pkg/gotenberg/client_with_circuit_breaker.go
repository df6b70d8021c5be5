package gotenberg

import (
	"context"

	"passport-admin-go/internal/pkg/circuitbreaker"
)

// ClientWithCircuitBreaker fails screenshot calls fast while Gotenberg is down.
type ClientWithCircuitBreaker struct {
	client *Client
	cb     *circuitbreaker.CircuitBreaker
}

func NewClientWithCircuitBreaker(client *Client, cfg circuitbreaker.Config) *ClientWithCircuitBreaker {
	return &ClientWithCircuitBreaker{
		client: client,
		cb:     circuitbreaker.NewCircuitBreaker(cfg),
	}
}

func (c *ClientWithCircuitBreaker) Screenshot(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	var result []byte
	err := c.cb.Execute(ctx, func(ctx context.Context) error {
		var err error
		result, err = c.client.Screenshot(ctx, html, width, height)
		return err
	})
	return result, err
}

// HealthCheck bypasses the breaker so /health can see recovery.
func (c *ClientWithCircuitBreaker) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

func (c *ClientWithCircuitBreaker) State() circuitbreaker.State {
	return c.cb.State()
}

func (c *ClientWithCircuitBreaker) IsHealthy() bool {
	return c.cb.IsHealthy()
}

func (c *ClientWithCircuitBreaker) Name() string {
	return c.cb.Name()
}
