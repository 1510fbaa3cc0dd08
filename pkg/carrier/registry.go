package carrier

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered shipping carriers. Iteration order follows
// registration order, which keeps quote aggregation deterministic.
type Registry struct {
	carriers map[string]Carrier
	order    []string
	mu       sync.RWMutex
}

// NewRegistry creates a new carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		carriers: make(map[string]Carrier),
	}
}

// Register adds a carrier to the registry. Re-registering a name replaces
// the carrier but keeps its original position.
func (r *Registry) Register(c Carrier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carriers[c.Name()]; !ok {
		r.order = append(r.order, c.Name())
	}
	r.carriers[c.Name()] = c
}

// Get returns a carrier by name. Lookup is case-sensitive.
func (r *Registry) Get(name string) (Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.carriers[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered carriers in registration order.
func (r *Registry) All() []Carrier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Carrier, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.carriers[name])
	}
	return result
}

// ByCoverage returns registered carriers matching the given coverage,
// in registration order.
func (r *Registry) ByCoverage(cov Coverage) []Carrier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Carrier, 0, len(r.order))
	for _, name := range r.order {
		if c := r.carriers[name]; c.Coverage() == cov {
			result = append(result, c)
		}
	}
	return result
}

// Names returns the names of all registered carriers in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carriers)
}

// QuoteOutcome reports one carrier's result in a quote fan-out: its error
// if the call failed, and how long the call took.
type QuoteOutcome struct {
	Carrier  string
	Err      error
	Duration time.Duration
}

// QuoteAll fetches quotes from the given carriers in parallel and merges
// them sorted ascending by total price. Results are collected per carrier
// slot before merging, so equal prices keep carrier order. Errors from
// individual carriers don't fail the entire request; each carrier's error
// and latency are reported in its outcome slot.
func QuoteAll(ctx context.Context, carriers []Carrier, req *QuoteRequest) ([]ServiceQuote, []QuoteOutcome) {
	if len(carriers) == 0 {
		return nil, nil
	}

	perCarrier := make([][]ServiceQuote, len(carriers))
	outcomes := make([]QuoteOutcome, len(carriers))

	g, ctx := errgroup.WithContext(ctx)

	for i, c := range carriers {
		i, c := i, c
		g.Go(func() error {
			start := time.Now()
			quotes, err := c.Quote(ctx, req)
			outcomes[i] = QuoteOutcome{
				Carrier:  c.Name(),
				Err:      err,
				Duration: time.Since(start),
			}
			if err != nil {
				return nil // don't fail the group, continue with other carriers
			}
			perCarrier[i] = quotes
			return nil
		})
	}

	g.Wait()

	var merged []ServiceQuote
	for _, quotes := range perCarrier {
		merged = append(merged, quotes...)
	}
	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].TotalPrice < merged[b].TotalPrice
	})

	return merged, outcomes
}
