// Package s3 provides the "s3" dataset source: a CSV object downloaded from
// an object storage URL, typically a pre-signed S3 GET URL.
package s3

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/specialistvlad/dashgridgo/modules/csvfile"
	"github.com/specialistvlad/dashgridgo/modules/inline"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// httpClient is shared by all s3 datasets to reuse TCP connections.
var httpClient = &http.Client{}

// Args are the arguments of an s3 dataset.
type Args struct {
	URL       string `json:"url"`
	Delimiter string `json:"delimiter"`
	Timeout   string `json:"timeout"`
}

type loader struct {
	url     string
	comma   rune
	timeout time.Duration
}

// New validates args and returns a loader for the object.
func New(_ context.Context, raw map[string]any) (dataset.Loader, error) {
	var args Args
	if err := params.Decode(raw, &args, true); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(args.URL, "http://") && !strings.HasPrefix(args.URL, "https://") {
		return nil, fmt.Errorf("%w: s3 source needs an http(s) url, got %q", model.ErrConfiguration, args.URL)
	}
	comma, err := csvfile.ParseDelimiter(args.Delimiter)
	if err != nil {
		return nil, err
	}
	l := &loader{url: args.URL, comma: comma, timeout: 30 * time.Second}
	if args.Timeout != "" {
		if l.timeout, err = time.ParseDuration(args.Timeout); err != nil {
			return nil, fmt.Errorf("%w: invalid timeout: %w", model.ErrConfiguration, err)
		}
	}
	return l, nil
}

// Load downloads the object and parses it as CSV. The limit parameter is
// applied after parsing.
func (l *loader) Load(ctx context.Context, p map[string]any) (*table.Table, error) {
	logger := ctxlog.FromContext(ctx).With("action", "download")

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 download request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute S3 download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("S3 download failed with status: %s", resp.Status)
	}

	t, err := csvfile.Parse(resp.Body, l.comma)
	if err != nil {
		return nil, fmt.Errorf("S3 object: %w", err)
	}
	logger.Debug("Downloaded object.", "rows", t.Len(), "contentType", resp.Header.Get("Content-Type"))
	return inline.Limit(t, p)
}

// Register registers the s3 source.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSource("s3", New)
}
