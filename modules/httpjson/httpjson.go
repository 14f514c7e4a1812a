// Package httpjson provides the "http_json" dataset source: a GET request
// whose JSON response body is read as a table. Load parameters become query
// arguments, so a parameter such as data_frame.year reaches the endpoint as
// ?year=2024.
package httpjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
)

const defaultTimeout = 10 * time.Second

// maxBody bounds the response size read from an endpoint.
const maxBody = 32 << 20

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the http_json source.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSource("http_json", New)
}

// Args are the arguments of an http_json dataset.
type Args struct {
	URL     string            `json:"url"`
	Timeout string            `json:"timeout"`
	Headers map[string]string `json:"headers"`
}

// Loader fetches the dataset over HTTP. It owns a pooled *http.Client.
type Loader struct {
	client  *http.Client
	base    *url.URL
	headers map[string]string
}

// New validates args and creates the client.
func New(_ context.Context, raw map[string]any) (dataset.Loader, error) {
	var args Args
	if err := params.Decode(raw, &args, true); err != nil {
		return nil, err
	}
	base, err := url.Parse(args.URL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: http_json source needs an absolute url, got %q", model.ErrConfiguration, args.URL)
	}
	timeout := defaultTimeout
	if args.Timeout != "" {
		if timeout, err = time.ParseDuration(args.Timeout); err != nil {
			return nil, fmt.Errorf("%w: timeout: %w", model.ErrConfiguration, err)
		}
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return &Loader{client: client, base: base, headers: args.Headers}, nil
}

// Load requests the dataset with p encoded as query arguments.
func (l *Loader) Load(ctx context.Context, p map[string]any) (*table.Table, error) {
	u := *l.base
	q := u.Query()
	for k, v := range encodeParams(p) {
		q[k] = v
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range l.headers {
		req.Header.Set(k, v)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Making HTTP request", "url", u.String())
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	logger.Debug("Received HTTP response", "status", resp.Status)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected response status %s", resp.Status)
	}
	var body any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return table.FromValue(body)
}

// Close releases idle connections.
func (l *Loader) Close() error {
	l.client.CloseIdleConnections()
	return nil
}

func encodeParams(p map[string]any) url.Values {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		for _, v := range model.AsList(p[k]) {
			q.Add(k, formatParam(v))
		}
	}
	return q
}

func formatParam(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
