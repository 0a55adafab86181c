package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
	"github.com/shopspring/decimal"
)

type PaymentStore struct {
	s *Store
}

func (ps *PaymentStore) Create(_ context.Context, p models.Payment) (*models.Payment, error) {
	s := ps.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p.ID = s.newID()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.payments[p.ID] = p
	return &p, nil
}

func (ps *PaymentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()

	p, ok := ps.s.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Update keeps an existing PaidAt, matching COALESCE(paid_at, $5) in SQL.
func (ps *PaymentStore) Update(_ context.Context, p models.Payment) (*models.Payment, error) {
	s := ps.s
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.payments[p.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cur.Amount = p.Amount
	cur.Status = p.Status
	cur.DueDate = p.DueDate
	if cur.PaidAt == nil {
		cur.PaidAt = p.PaidAt
	}
	cur.UpdatedAt = s.now()
	s.payments[cur.ID] = cur
	return &cur, nil
}

func (ps *PaymentStore) Delete(_ context.Context, id uuid.UUID) error {
	s := ps.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.payments, id)
	return nil
}

func (ps *PaymentStore) List(_ context.Context, filter repository.PaymentFilter) ([]models.PaymentRecord, error) {
	s := ps.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(s.payments))
	for id, p := range s.payments {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.TenancyID != nil && (p.TenancyID == nil || *p.TenancyID != *filter.TenancyID) {
			continue
		}
		ids = append(ids, id)
	}
	s.newestFirst(ids)
	if filter.Limit > 0 && len(ids) > filter.Limit {
		ids = ids[:filter.Limit]
	}

	records := make([]models.PaymentRecord, 0, len(ids))
	for _, id := range ids {
		p := s.payments[id]
		rec := models.PaymentRecord{Payment: p}
		if p.TenancyID != nil {
			if t, ok := s.tenancies[*p.TenancyID]; ok {
				if u, ok := s.users[t.UserID]; ok {
					name := u.Name
					rec.TenantName = &name
				}
				if t.RoomID != nil {
					if r, ok := s.rooms[*t.RoomID]; ok {
						number := r.RoomNumber
						rec.RoomNumber = &number
					}
				}
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (ps *PaymentStore) SumPaid(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()

	sum := decimal.Zero
	for _, p := range ps.s.payments {
		if p.Status != models.PaymentPaid {
			continue
		}
		if p.DueDate.Before(from) || !p.DueDate.Before(to) {
			continue
		}
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}
