// Package service holds the business rules: room registry, tenancy
// check-in and check-out, payment ledger and dashboard. It is stateless
// between calls; everything durable goes through the repositories.
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/lalith-99/kosboard/internal/auth"
	"github.com/lalith-99/kosboard/internal/duedate"
	"github.com/lalith-99/kosboard/internal/events"
	"github.com/lalith-99/kosboard/internal/observ"
	"github.com/lalith-99/kosboard/internal/repository"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Publisher receives domain events after a successful write.
type Publisher interface {
	Publish(ev events.Event)
}

type Repos struct {
	Rooms     repository.RoomRepository
	Users     repository.UserRepository
	Tenancies repository.TenancyRepository
	Payments  repository.PaymentRepository
}

type Service struct {
	rooms     repository.RoomRepository
	users     repository.UserRepository
	tenancies repository.TenancyRepository
	payments  repository.PaymentRepository

	logger  *zap.Logger
	metrics *observ.Metrics
	events  Publisher

	now    func() time.Time
	loc    *time.Location
	policy duedate.Policy
	window int

	defaultPassword string
	hashOnce        sync.Once
	defaultHash     string
	hashErr         error
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithDuePolicy(policy duedate.Policy, window int) Option {
	return func(s *Service) {
		s.policy = policy
		s.window = window
	}
}

func WithMetrics(m *observ.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithEvents(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithDefaultPassword sets the password given to tenants created at
// check-in.
func WithDefaultPassword(pw string) Option {
	return func(s *Service) { s.defaultPassword = pw }
}

func New(repos Repos, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		rooms:           repos.Rooms,
		users:           repos.Users,
		tenancies:       repos.Tenancies,
		payments:        repos.Payments,
		logger:          logger,
		now:             time.Now,
		loc:             time.Local,
		policy:          duedate.Advance,
		window:          duedate.DefaultWindow,
		defaultPassword: "12345678",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// today is the current calendar date in the business timezone.
func (s *Service) today() time.Time {
	return duedate.Date(s.now().In(s.loc))
}

func (s *Service) parseDate(v string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, v, s.loc)
	return t, err == nil
}

func (s *Service) publish(kind string, data any) {
	if s.events == nil {
		return
	}
	s.events.Publish(events.Event{Type: kind, Data: data, At: s.now()})
}

// internal logs the cause and returns an error that reveals nothing of it.
func (s *Service) internal(op string, err error) error {
	s.logger.Error(op+" failed", zap.Error(err))
	return &Error{Kind: KindInternal, Message: "internal error", Err: fmt.Errorf("%s: %w", op, err)}
}

// tenantPasswordHash hashes the default tenant password once per process.
func (s *Service) tenantPasswordHash() (string, error) {
	s.hashOnce.Do(func() {
		s.defaultHash, s.hashErr = auth.HashPassword(s.defaultPassword)
	})
	return s.defaultHash, s.hashErr
}
