package swappool

import (
	"time"

	"go.uber.org/zap"
)

/*
Option configures a Handle/Pool at construction time, the same Functional
Options Pattern tempuscache's own options.go uses (there: Option
func(*Cache)). Handle is generic over the stored value type, and Go
doesn't support parameterizing a function type's signature over type
arguments supplied only at the call site, so options here mutate a plain,
non-generic config struct that NewHandle/NewPool read once during
construction instead of closing over the generic Handle directly.

This also doubles as the Go mapping of spec.md §6's "build-time feature
flags" (hasher choice, UUID salting) onto runtime construction — see
DESIGN.md's Open Question resolution.
*/
type Option func(*config)

type config struct {
	manager         RankingPolicy
	transformer     Transformer
	threadSafe      bool
	logger          *zap.Logger
	hasher          HasherKind
	salted          bool
	janitorInterval time.Duration
}

func defaultConfig() config {
	return config{
		manager:     NewLastUseTimestampPolicy(),
		transformer: IdentityTransformer{},
		threadSafe:  true,
		logger:      nopLogger(),
		hasher:      HasherXXH3,
	}
}

// WithManager selects the RankingPolicy used to score entities for
// eviction order. Defaults to LastUseTimestampPolicy.
func WithManager(m RankingPolicy) Option {
	return func(c *config) { c.manager = m }
}

// WithTransformer selects the byte-stream transformer applied at the disk
// boundary. Defaults to IdentityTransformer.
func WithTransformer(t Transformer) Option {
	return func(c *config) { c.transformer = t }
}

// WithThreadSafe toggles whether the pool's internal InplaceCells are
// guarded by a sync.RWMutex. Disable only for single-goroutine use.
// Defaults to true.
func WithThreadSafe(threadSafe bool) Option {
	return func(c *config) { c.threadSafe = threadSafe }
}

// WithLogger attaches a *zap.Logger for entity/handle/janitor activity.
// Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHasher selects the hash function used to derive entity uuids from
// their backing paths. Defaults to HasherXXH3, the fastest option for the
// large-value workloads this library targets.
func WithHasher(kind HasherKind) Option {
	return func(c *config) { c.hasher = kind }
}

// WithSaltedUUID mixes a random salt into by-value spawn uuids, on top of
// the serialized value and timestamp, and into path-derived entity uuids.
// Defaults to false.
func WithSaltedUUID(salted bool) Option {
	return func(c *config) { c.salted = salted }
}

// WithJanitorInterval enables a background goroutine that periodically
// calls Handle.CollectGarbage (see janitor.go). Zero (the default)
// disables the janitor entirely; the pool then relies solely on garbage
// collection performed inline by Used/Free.
func WithJanitorInterval(d time.Duration) Option {
	return func(c *config) { c.janitorInterval = d }
}

/*
Builder accumulates Options fluently, mirroring spec.md §4.5's
builder().with_manager(m).with_transformer(t).with_thread_safe(b) chain.
Build is a free function rather than a Builder method because Go methods
cannot introduce their own type parameters — Builder itself stays
non-generic and NewPool/NewHandle supply T/PT at the call site.
*/
type Builder struct {
	opts []Option
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) WithManager(m RankingPolicy) *Builder {
	b.opts = append(b.opts, WithManager(m))
	return b
}

func (b *Builder) WithTransformer(t Transformer) *Builder {
	b.opts = append(b.opts, WithTransformer(t))
	return b
}

func (b *Builder) WithThreadSafe(threadSafe bool) *Builder {
	b.opts = append(b.opts, WithThreadSafe(threadSafe))
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.opts = append(b.opts, WithLogger(logger))
	return b
}

func (b *Builder) WithHasher(kind HasherKind) *Builder {
	b.opts = append(b.opts, WithHasher(kind))
	return b
}

func (b *Builder) WithSaltedUUID(salted bool) *Builder {
	b.opts = append(b.opts, WithSaltedUUID(salted))
	return b
}

func (b *Builder) WithJanitorInterval(d time.Duration) *Builder {
	b.opts = append(b.opts, WithJanitorInterval(d))
	return b
}

// Options returns the accumulated option slice, consumed by BuildPool.
func (b *Builder) Options() []Option {
	return b.opts
}

// BuildPool constructs a Pool[T, PT] from a Builder's accumulated
// options, the generic counterpart of spec.md §4.5's
// builder()....build(budget, folder).
func BuildPool[T Payload, PT PayloadPtr[T]](b *Builder, allocated int, folder string) (*Pool[T, PT], error) {
	return NewPool[T, PT](allocated, folder, b.Options()...)
}
