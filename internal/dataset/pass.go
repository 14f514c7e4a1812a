package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/specialistvlad/dashgridgo/internal/table"
	"golang.org/x/sync/singleflight"
)

// Pass memoizes dataset loads for the lifetime of one resolution pass.
// Successful loads are cached by name and parameters; failures are not, so a
// later target in the same pass retries.
type Pass struct {
	reg   *Registry
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]*table.Table
	calls int
}

// NewPass creates a memoizing view of r scoped to one pass.
func (r *Registry) NewPass() *Pass {
	return &Pass{reg: r, cache: make(map[string]*table.Table)}
}

// Load returns the table for name and params, loading it at most once per
// distinct key unless an earlier load failed.
func (p *Pass) Load(ctx context.Context, name string, params map[string]any) (*table.Table, error) {
	key := cacheKey(name, params)

	p.mu.Lock()
	if t, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return t, nil
	}
	p.mu.Unlock()

	v, err, _ := p.group.Do(key, func() (any, error) {
		p.mu.Lock()
		p.calls++
		p.mu.Unlock()

		t, err := p.reg.Load(ctx, name, params)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cache[key] = t
		p.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*table.Table), nil
}

// Loads reports how many loader invocations the pass made.
func (p *Pass) Loads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// cacheKey relies on encoding/json sorting map keys, which makes the key
// independent of parameter insertion order.
func cacheKey(name string, params map[string]any) string {
	if len(params) == 0 {
		return name
	}
	b, err := json.Marshal(params)
	if err != nil {
		// Unencodable parameters are never shared between targets.
		return fmt.Sprintf("%s\x00%p", name, params)
	}
	return name + "\x00" + string(b)
}
