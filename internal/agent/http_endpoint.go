package agent

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

	"campus-info-go/internal/store"
)

type bearerKey struct{}

// WithBearerToken 把调用方的访问令牌放进 ctx，HTTPEndpoint 会原样转发。
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerToken 读取 ctx 中的访问令牌。
func BearerToken(ctx context.Context) string {
	tok, _ := ctx.Value(bearerKey{}).(string)
	return tok
}

// HTTPEndpoint 通过 REST API 获取校园数据。
type HTTPEndpoint struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEndpoint 创建一个访问 baseURL（例如 http://localhost:8080/api/v1）的数据端点。
func NewHTTPEndpoint(baseURL string, timeout time.Duration) *HTTPEndpoint {
	return &HTTPEndpoint{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *HTTPEndpoint) fetch(ctx context.Context, topic string, params ParamSet) ([]store.Record, error) {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	u := e.baseURL + "/" + topic
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if tok := BearerToken(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", topic, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", topic, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: unexpected status %d", topic, resp.StatusCode)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", topic, err)
	}
	dec := json.NewDecoder(bytes.NewReader(envelope.Data))
	dec.UseNumber()
	var records []store.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s records: %w", topic, err)
	}
	return records, nil
}

func (e *HTTPEndpoint) FetchSchedules(ctx context.Context, params ParamSet) ([]store.Record, error) {
	return e.fetch(ctx, "schedules", params)
}

func (e *HTTPEndpoint) FetchMenus(ctx context.Context, params ParamSet) ([]store.Record, error) {
	return e.fetch(ctx, "menus", params)
}

func (e *HTTPEndpoint) FetchBuses(ctx context.Context, params ParamSet) ([]store.Record, error) {
	return e.fetch(ctx, "buses", params)
}

func (e *HTTPEndpoint) FetchEvents(ctx context.Context, params ParamSet) ([]store.Record, error) {
	return e.fetch(ctx, "events", params)
}

func (e *HTTPEndpoint) FetchUpdates(ctx context.Context, params ParamSet) ([]store.Record, error) {
	return e.fetch(ctx, "updates", params)
}

func (e *HTTPEndpoint) FetchFAQs(ctx context.Context, params ParamSet) ([]store.Record, error) {
	return e.fetch(ctx, "faqs", params)
}
