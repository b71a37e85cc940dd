package lightning

// config.go defines the internal configuration object and the set of
// functional options NewTable/NewWordMap/NewObjectMap accept. Options never
// allocate unless strictly necessary — they just capture pointers to
// external objects (registry, logger, hasher).
//
// © 2025 Lightning authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/shisoft/lightning/internal/chunkalloc"
	"github.com/shisoft/lightning/internal/hashfn"
)

// Option configures a Table at construction time. It has no type parameter
// of its own because every knob it carries (logger, registry, hasher,
// backoff budget) is independent of the table's value type V.
type Option func(*config)

// config bundles every knob that influences table behaviour. Immutable once
// the Table is constructed.
type config struct {
	logger     *zap.Logger
	registry   *prometheus.Registry
	hasher     hashfn.Hasher
	allocator  chunkalloc.Allocator
	maxRetries int
}

func defaultConfig() *config {
	return &config{
		logger:     zap.NewNop(),
		registry:   nil, // user must opt-in to metrics
		hasher:     hashfn.Default(),
		allocator:  chunkalloc.Default(),
		maxRetries: 8,
	}
}

// WithLogger plugs an external zap.Logger. The table only logs slow/rare
// events (resize, forced resize, table-full retries), never on the fast
// path.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection. Passing nil disables
// metrics (the default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithHasher overrides the default maphash-backed hasher, e.g. with
// hashfn.Passthrough{} for keys that are already well distributed.
func WithHasher(h hashfn.Hasher) Option {
	return func(c *config) {
		if h != nil {
			c.hasher = h
		}
	}
}

// WithAllocator overrides the chunk allocator, e.g. to wire in a
// pool tuned for a specific deployment's chunk size distribution instead of
// the package's default size-classed sync.Pool allocator.
func WithAllocator(a chunkalloc.Allocator) Option {
	return func(c *config) {
		if a != nil {
			c.allocator = a
		}
	}
}

// WithBackoff sets how many times Insert will force a synchronous resize
// and retry after observing ResTableFull before giving up with
// ErrTableFull (DESIGN.md Open Question 3). Values <= 0 are ignored.
func WithBackoff(maxRetries int) Option {
	return func(c *config) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}
	}
}

// applyOptions copies user-supplied options into cfg.
func applyOptions(cfg *config, opts []Option) {
	for _, opt := range opts {
		opt(cfg)
	}
}

func isPowerOfTwo(n int) bool {
	return n >= 2 && n&(n-1) == 0
}
