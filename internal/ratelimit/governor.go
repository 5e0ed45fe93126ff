package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Class      RouteClass
	Limit      int
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below one.
func (d Decision) RetryAfterSeconds() int {
	return ceilSeconds(d.RetryAfter)
}

// ResetSeconds rounds ResetAfter up to whole seconds, never below one.
func (d Decision) ResetSeconds() int {
	return ceilSeconds(d.ResetAfter)
}

func ceilSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

type Option func(*Governor)

func WithClock(now func() time.Time) Option {
	return func(g *Governor) {
		if now != nil {
			g.now = now
		}
	}
}

// WithSweepHook is called after every sweep with the number of windows left.
func WithSweepHook(fn func(remaining int)) Option {
	return func(g *Governor) {
		g.onSweep = fn
	}
}

type windowKey struct {
	client string
	class  RouteClass
}

type window struct {
	start time.Time
	size  time.Duration
	count int
}

// Governor holds fixed-window counters per (client key, route class). State
// lives in process memory only.
type Governor struct {
	mu      sync.Mutex
	rules   map[RouteClass]Rule
	windows map[windowKey]*window
	now     func() time.Time
	onSweep func(int)
}

// New copies rules over the defaults; invalid entries keep the default.
func New(rules map[RouteClass]Rule, opts ...Option) *Governor {
	merged := DefaultRules()
	for class, rule := range rules {
		if rule.valid() {
			merged[class] = rule
		}
	}
	g := &Governor{
		rules:   merged,
		windows: make(map[windowKey]*window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rule resolves the rule of class, falling back to api_default for unknown
// classes.
func (g *Governor) Rule(class RouteClass) Rule {
	if rule, ok := g.rules[class]; ok {
		return rule
	}
	return g.rules[APIDefault]
}

// Admit counts one request for clientKey against class.
func (g *Governor) Admit(clientKey string, class RouteClass) Decision {
	rule := g.Rule(class)
	key := windowKey{client: clientKey, class: class}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	w, ok := g.windows[key]
	if !ok || now.Sub(w.start) >= w.size {
		w = &window{start: now, size: rule.Window}
		g.windows[key] = w
	}

	elapsed := now.Sub(w.start)
	decision := Decision{
		Class:      class,
		Limit:      rule.Limit,
		ResetAfter: w.size - elapsed,
	}
	if w.count < rule.Limit {
		w.count++
		decision.Allowed = true
		decision.Remaining = rule.Limit - w.count
		return decision
	}
	decision.RetryAfter = w.size - elapsed
	return decision
}

// Sweep drops windows that have rolled over and returns how many remain.
func (g *Governor) Sweep() int {
	g.mu.Lock()
	now := g.now()
	for key, w := range g.windows {
		if now.Sub(w.start) >= w.size {
			delete(g.windows, key)
		}
	}
	remaining := len(g.windows)
	g.mu.Unlock()

	if g.onSweep != nil {
		g.onSweep(remaining)
	}
	return remaining
}

// Run sweeps every interval until ctx is done.
func (g *Governor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Sweep()
		}
	}
}

// Len reports the number of windows currently held.
func (g *Governor) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.windows)
}
