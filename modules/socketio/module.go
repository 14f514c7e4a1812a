// Package socketio provides the "socketio" dataset source. Each load
// connects to a Socket.IO namespace, emits a request event carrying the load
// parameters and reads the first reply event as a table.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultTimeout = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the socketio source.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSource("socketio", New)
}

// Args are the arguments of a socketio dataset.
type Args struct {
	URL                string `json:"url"`
	Namespace          string `json:"namespace"`
	EmitEvent          string `json:"emit_event"`
	OnEvent            string `json:"on_event"`
	Timeout            string `json:"timeout"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify"`
}

// Loader requests the dataset over Socket.IO.
type Loader struct {
	args    Args
	baseURL string
	path    string
	timeout time.Duration
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value any
	err   error
}

// New validates args. No connection is made until the first load.
func New(_ context.Context, raw map[string]any) (dataset.Loader, error) {
	var args Args
	if err := params.Decode(raw, &args, true); err != nil {
		return nil, err
	}
	if args.EmitEvent == "" || args.OnEvent == "" {
		return nil, fmt.Errorf("%w: socketio source needs emit_event and on_event", model.ErrConfiguration)
	}
	parsedURL, err := url.Parse(args.URL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: socketio source needs an absolute url, got %q", model.ErrConfiguration, args.URL)
	}
	if args.Namespace == "" {
		args.Namespace = "/"
	}

	l := &Loader{
		args:    args,
		baseURL: fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host),
		path:    parsedURL.Path,
		timeout: defaultTimeout,
	}
	if args.Timeout != "" {
		if l.timeout, err = time.ParseDuration(args.Timeout); err != nil {
			return nil, fmt.Errorf("%w: timeout: %w", model.ErrConfiguration, err)
		}
	}
	return l, nil
}

// Load emits the request and waits for the reply, bounded by the timeout.
func (l *Loader) Load(ctx context.Context, p map[string]any) (*table.Table, error) {
	logger := ctxlog.FromContext(ctx).With("source", "socketio", "url", l.baseURL, "onEvent", l.args.OnEvent, "emitEvent", l.args.EmitEvent)
	logger.Debug("Load started")
	defer logger.Debug("Load finished")

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	send := func(r opResult) {
		select {
		case done <- r:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	opts := socket.DefaultOptions()
	if l.path != "" {
		opts.SetPath(l.path)
	}
	if l.args.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(l.baseURL, opts)
	io := manager.Socket(l.args.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	request := params.DeepCopy(p)
	if request == nil {
		request = map[string]any{}
	}

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Debug("Connected, emitting request", "namespace", l.args.Namespace, "sid", io.Id())
		io.Emit(l.args.EmitEvent, request)
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		send(opResult{err: err})
	})

	io.On(types.EventName(l.args.OnEvent), func(data ...any) {
		var reply any
		if len(data) > 0 {
			reply = data[0]
		}
		send(opResult{value: reply})
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", l.args.OnEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return table.FromValue(res.value)
	}
}
