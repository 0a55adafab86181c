// Package memory is an in-process implementation of the repository
// interfaces. It backs STORE=memory for local runs and is the store the
// service and API tests run against.
//
// One mutex guards all tables, so multi-table operations such as check-in
// are atomic the same way a database transaction would make them.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/models"
)

type Store struct {
	mu sync.RWMutex

	users     map[uuid.UUID]models.User
	rooms     map[uuid.UUID]models.Room
	tenancies map[uuid.UUID]models.Tenancy
	payments  map[uuid.UUID]models.Payment

	// seq orders rows created within the same clock tick.
	seq     int64
	created map[uuid.UUID]int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:     make(map[uuid.UUID]models.User),
		rooms:     make(map[uuid.UUID]models.Room),
		tenancies: make(map[uuid.UUID]models.Tenancy),
		payments:  make(map[uuid.UUID]models.Payment),
		created:   make(map[uuid.UUID]int64),
		now:       time.Now,
	}
}

// Rooms, Users, Tenancies and Payments return repository views that share
// this store's tables and lock.
func (s *Store) Rooms() *RoomStore        { return &RoomStore{s} }
func (s *Store) Users() *UserStore        { return &UserStore{s} }
func (s *Store) Tenancies() *TenancyStore { return &TenancyStore{s} }
func (s *Store) Payments() *PaymentStore  { return &PaymentStore{s} }

// newID must be called with the write lock held.
func (s *Store) newID() uuid.UUID {
	id := uuid.New()
	s.seq++
	s.created[id] = s.seq
	return id
}

// newestFirst sorts ids by creation order, latest first.
func (s *Store) newestFirst(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return s.created[ids[i]] > s.created[ids[j]] })
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
