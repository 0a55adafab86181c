package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/shopspring/decimal"
)

const recentPaymentsLimit = 5

type Reminder struct {
	TenancyID   uuid.UUID `json:"tenancy_id"`
	TenantName  string    `json:"tenant_name"`
	TenantPhone string    `json:"tenant_phone"`
	RoomNumber  string    `json:"room_number"`
	DueDate     time.Time `json:"due_date"`
	DaysLeft    int       `json:"days_left"`
	StatusText  string    `json:"status_text"`
}

type Summary struct {
	TotalRooms     int             `json:"total_rooms"`
	OccupiedRooms  int             `json:"occupied_rooms"`
	TotalTenants   int             `json:"total_tenants"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
	Reminders      []Reminder      `json:"reminders"`
	RecentPayments []PaymentView   `json:"recent_payments"`
}

// Reminders lists active tenants whose next due date is inside the
// reminder window or already passed, soonest first.
func (s *Service) Reminders(ctx context.Context, actor Actor) ([]Reminder, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}
	return s.reminders(ctx)
}

func (s *Service) reminders(ctx context.Context) ([]Reminder, error) {
	records, err := s.tenancies.List(ctx, models.TenancyActive)
	if err != nil {
		return nil, s.internal("list active tenancies", err)
	}

	today := s.today()
	reminders := make([]Reminder, 0)
	for _, rec := range records {
		v := s.view(rec, today)
		if v.Due == nil || !v.Due.Reminder {
			continue
		}
		r := Reminder{
			TenancyID:   rec.ID,
			TenantName:  rec.TenantName,
			TenantPhone: rec.TenantPhone,
			RoomNumber:  noRoom,
			DueDate:     v.Due.NextDueDate,
			DaysLeft:    v.Due.DaysLeft,
			StatusText:  v.Due.StatusText,
		}
		if rec.RoomNumber != nil {
			r.RoomNumber = *rec.RoomNumber
		}
		reminders = append(reminders, r)
	}
	sort.SliceStable(reminders, func(i, j int) bool { return reminders[i].DaysLeft < reminders[j].DaysLeft })
	return reminders, nil
}

// Dashboard is the admin overview. It names every tenant, so it is not
// available to the tenant role.
func (s *Service) Dashboard(ctx context.Context, actor Actor) (*Summary, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}

	counts, err := s.rooms.CountByStatus(ctx)
	if err != nil {
		return nil, s.internal("count rooms", err)
	}
	sum := &Summary{OccupiedRooms: counts[models.RoomOccupied]}
	for _, n := range counts {
		sum.TotalRooms += n
	}

	if sum.TotalTenants, err = s.tenancies.CountActive(ctx); err != nil {
		return nil, s.internal("count tenants", err)
	}
	if sum.MonthlyRevenue, err = s.MonthlyRevenue(ctx, s.now()); err != nil {
		return nil, err
	}
	if sum.Reminders, err = s.reminders(ctx); err != nil {
		return nil, err
	}
	if sum.RecentPayments, err = s.listPayments(ctx, PaymentFilter{Limit: recentPaymentsLimit}, nil); err != nil {
		return nil, err
	}
	return sum, nil
}
