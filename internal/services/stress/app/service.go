package app

import (
	"strings"
	"time"

	"github.com/louisbranch/wfrp-stress/internal/platform/id"
	"github.com/louisbranch/wfrp-stress/internal/random"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/louisbranch/wfrp-stress/internal/services/stress/app"

// Service applies stress tests to stored actors.
type Service struct {
	store   storage.Store
	logger  *zap.Logger
	tracer  trace.Tracer
	clock   func() time.Time
	newID   func() string
	newSeed func(*int64) (int64, error)
	locks   *keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides resolution and test ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithSeedFunc overrides how dice seeds are chosen.
func WithSeedFunc(newSeed func(*int64) (int64, error)) Option {
	return func(s *Service) {
		if newSeed != nil {
			s.newSeed = newSeed
		}
	}
}

// NewService creates a stress service backed by store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
		clock:   time.Now,
		newID:   id.MustNewID,
		newSeed: random.ResolveSeed,
		locks:   newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

func normalizeID(value string) string {
	return strings.TrimSpace(value)
}
