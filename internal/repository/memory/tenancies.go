package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
)

type TenancyStore struct {
	s *Store
}

// CheckIn holds the write lock for the whole check, flip and insert, which
// gives the same all-or-nothing result as the Postgres transaction.
// Nothing is written until every precondition has passed.
func (ts *TenancyStore) CheckIn(_ context.Context, p repository.CheckInParams) (*models.Tenancy, error) {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[p.RoomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if room.Status != models.RoomAvailable {
		return nil, repository.ErrRoomUnavailable
	}

	var user models.User
	switch {
	case p.UserID != nil:
		u, ok := s.users[*p.UserID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		user = u
	case p.Tenant != nil:
		u, ok := s.userByEmail(p.Tenant.Email)
		if !ok {
			u = s.insertUser(models.User{
				Name:         p.Tenant.Name,
				Email:        p.Tenant.Email,
				Phone:        p.Tenant.Phone,
				PasswordHash: p.Tenant.PasswordHash,
				Role:         models.RoleTenant,
			})
		}
		user = u
	default:
		return nil, repository.ErrNotFound
	}

	roomID := room.ID
	t := models.Tenancy{
		ID:        s.newID(),
		UserID:    user.ID,
		RoomID:    &roomID,
		StartDate: p.StartDate,
		DueDay:    p.DueDay,
		Status:    models.TenancyActive,
		CreatedAt: s.now(),
	}
	s.tenancies[t.ID] = t

	room.Status = models.RoomOccupied
	room.UpdatedAt = s.now()
	s.rooms[room.ID] = room

	return &t, nil
}

func (ts *TenancyStore) CheckOut(_ context.Context, tenancyID uuid.UUID, endDate time.Time) (*models.Tenancy, error) {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenancies[tenancyID]
	if !ok || t.Status != models.TenancyActive {
		return nil, repository.ErrNotFound
	}
	t.Status = models.TenancyHistory
	end := endDate
	t.EndDate = &end
	s.tenancies[t.ID] = t

	if t.RoomID != nil {
		if room, ok := s.rooms[*t.RoomID]; ok && room.Status == models.RoomOccupied {
			room.Status = models.RoomAvailable
			room.UpdatedAt = s.now()
			s.rooms[room.ID] = room
		}
	}
	return &t, nil
}

// record must be called with the lock held. ok is false when the tenancy's
// user is gone; the SQL store's inner join drops such rows too.
func (s *Store) record(t models.Tenancy) (models.TenancyRecord, bool) {
	u, ok := s.users[t.UserID]
	if !ok {
		return models.TenancyRecord{}, false
	}
	rec := models.TenancyRecord{
		Tenancy:     t,
		TenantName:  u.Name,
		TenantEmail: u.Email,
		TenantPhone: u.Phone,
	}
	if t.RoomID != nil {
		if r, ok := s.rooms[*t.RoomID]; ok {
			number, price := r.RoomNumber, r.Price
			rec.RoomNumber = &number
			rec.RoomPrice = &price
		}
	}
	return rec, true
}

func (ts *TenancyStore) GetByID(_ context.Context, id uuid.UUID) (*models.TenancyRecord, error) {
	s := ts.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenancies[id]
	if !ok {
		return nil, nil
	}
	rec, ok := s.record(t)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (ts *TenancyStore) List(_ context.Context, status models.TenancyStatus) ([]models.TenancyRecord, error) {
	s := ts.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(s.tenancies))
	for id, t := range s.tenancies {
		if status == "" || t.Status == status {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids)

	records := make([]models.TenancyRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.record(s.tenancies[id]); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (ts *TenancyStore) CountActive(_ context.Context) (int, error) {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()

	n := 0
	for _, t := range ts.s.tenancies {
		if t.Status == models.TenancyActive {
			n++
		}
	}
	return n, nil
}
