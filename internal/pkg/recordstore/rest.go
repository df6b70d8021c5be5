package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"passport-admin-go/internal/domain/record"
)

// APIError is the error body returned by PostgREST.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("record store returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("record store returned status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

// RESTStore reads and updates tables through a PostgREST (Supabase) endpoint.
type RESTStore struct {
	baseURL string
	apiKey  string
	tables  record.Tables
	client  *http.Client
}

func NewRESTStore(baseURL, apiKey string, tables record.Tables, timeout time.Duration) *RESTStore {
	return NewRESTStoreWithClient(baseURL, apiKey, tables, &http.Client{Timeout: timeout})
}

func NewRESTStoreWithClient(baseURL, apiKey string, tables record.Tables, client *http.Client) *RESTStore {
	return &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tables:  tables,
		client:  client,
	}
}

func (s *RESTStore) List(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", kind.OrderColumn()+".desc")

	req, err := s.newRequest(ctx, http.MethodGet, kind, q, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var rows []record.Record
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	if rows == nil {
		rows = []record.Record{}
	}
	return rows, nil
}

func (s *RESTStore) Update(ctx context.Context, kind record.Kind, id record.ID, patch record.Patch) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}

	q := url.Values{}
	q.Set("id", "eq."+string(id))

	req, err := s.newRequest(ctx, http.MethodPatch, kind, q, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *RESTStore) newRequest(ctx context.Context, method string, kind record.Kind, q url.Values, body io.Reader) (*http.Request, error) {
	endpoint := s.baseURL + "/rest/v1/" + url.PathEscape(s.tables.Name(kind)) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	return req, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if len(data) > 0 && json.Unmarshal(data, apiErr) != nil {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrRecordNotFound, apiErr)
	}
	return apiErr
}
