// Package httpstore implements the store interface against the provider's
// HTTP object API.
//
// The list endpoint is served in two shapes, depending on provider version:
// a bare array of objects, or an envelope {"objects": [...], "truncated":
// bool, "cursor": "..."}. Both are tolerated.
package httpstore

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

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// Store talks to the provider object API over HTTP.
type Store struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// New creates an HTTP store client for the given endpoint. The API key may be
// empty when the endpoint does not require bearer auth.
func New(endpoint, apiKey string, httpClient *http.Client) *Store {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Store{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// listEnvelope is the envelope response shape of the list endpoint.
type listEnvelope struct {
	Objects   []wireObject `json:"objects"`
	Truncated bool         `json:"truncated"`
	Cursor    string       `json:"cursor"`
}

// wireObject is one object entry on the wire.
type wireObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
}

// ListPage fetches one page of object entries under prefix.
func (s *Store) ListPage(ctx context.Context, bucket, prefix, cursor string) (*sweeptypes.Page, error) {
	q := url.Values{}
	q.Set("bucket", bucket)
	q.Set("prefix", prefix)
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	body, status, err := s.do(ctx, http.MethodGet, s.endpoint+"/objects?"+q.Encode())
	if err != nil {
		return nil, sweeperrors.NewPathError("listPage", bucket, prefix, err)
	}
	if err := classifyStatus(status, body); err != nil {
		return nil, sweeperrors.NewPathError("listPage", bucket, prefix, err)
	}

	entries, next, err := decodePage(body)
	if err != nil {
		return nil, sweeperrors.NewPathError("listPage", bucket, prefix, err)
	}

	return &sweeptypes.Page{Entries: entries, Cursor: next}, nil
}

// DeleteObject deletes a single key. A 404 response is success: the delete is
// idempotent.
func (s *Store) DeleteObject(ctx context.Context, bucket, key string) error {
	q := url.Values{}
	q.Set("bucket", bucket)
	u := s.endpoint + "/objects/" + url.PathEscape(key) + "?" + q.Encode()

	body, status, err := s.do(ctx, http.MethodDelete, u)
	if err != nil {
		return sweeperrors.NewPathError("deleteObject", bucket, key, err)
	}
	if status == http.StatusNotFound {
		return nil
	}
	if err := classifyStatus(status, body); err != nil {
		return sweeperrors.NewPathError("deleteObject", bucket, key, err)
	}
	return nil
}

// do issues a request and returns the response body and status code.
func (s *Store) do(ctx context.Context, method, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// classifyStatus maps an HTTP status plus body to the engine's error taxonomy.
func classifyStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		// Some provider versions return 200 with an error payload instead of
		// a rate-limit status.
		if isRateLimitPayload(body) {
			return sweeperrors.ErrRateLimited
		}
		return nil
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		return sweeperrors.ErrRateLimited
	case status == http.StatusNotFound:
		return sweeperrors.ErrNotFound
	default:
		if isRateLimitPayload(body) {
			return sweeperrors.ErrRateLimited
		}
		return fmt.Errorf("unexpected status %d: %s", status, truncateBody(body))
	}
}

// isRateLimitPayload detects provider error payloads that signal throttling
// without the matching HTTP status.
func isRateLimitPayload(body []byte) bool {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return false
	}
	msg := strings.ToLower(payload.Error)
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "unavailable")
}

// decodePage decodes the list response, accepting both the bare-array and the
// envelope shape.
func decodePage(body []byte) ([]sweeptypes.ObjectEntry, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, "", sweeperrors.ErrMalformedResponse
	}

	if trimmed[0] == '[' {
		var objects []wireObject
		if err := json.Unmarshal(trimmed, &objects); err != nil {
			return nil, "", fmt.Errorf("%w: %v", sweeperrors.ErrMalformedResponse, err)
		}
		// The bare-array shape carries no cursor: the listing is one page.
		return convertObjects(objects), "", nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, "", fmt.Errorf("%w: %v", sweeperrors.ErrMalformedResponse, err)
	}
	cursor := envelope.Cursor
	if !envelope.Truncated {
		cursor = ""
	}
	return convertObjects(envelope.Objects), cursor, nil
}

// convertObjects converts wire objects to engine entries.
func convertObjects(objects []wireObject) []sweeptypes.ObjectEntry {
	entries := make([]sweeptypes.ObjectEntry, 0, len(objects))
	for _, obj := range objects {
		entries = append(entries, sweeptypes.ObjectEntry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
		})
	}
	return entries
}

// truncateBody bounds error messages taken from response bodies.
func truncateBody(body []byte) string {
	const max = 256
	s := string(bytes.TrimSpace(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
