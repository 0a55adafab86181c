package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/duedate"
	"github.com/lalith-99/kosboard/internal/events"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	formerTenant = "former tenant"
	noRoom       = "n/a"
)

// PaymentInput is a payment as submitted. Status is a hint: the ledger
// derives the stored status itself, see DeriveStatus.
type PaymentInput struct {
	TenancyID uuid.UUID
	Amount    string
	DueDate   string
	Status    models.PaymentStatus
}

// PaymentView is a payment with the tenant name and room number resolved
// at read time.
type PaymentView struct {
	models.Payment
	TenantName string `json:"tenant_name"`
	RoomNumber string `json:"room_number"`
}

type PaymentFilter struct {
	Status    models.PaymentStatus
	TenancyID *uuid.UUID
	Limit     int
}

// DeriveStatus is the single rule for a payment's status.
//
// A payment that covers the room price is paid (lunas). A short payment is
// late when the caller says so or its due date is before today, and
// pending otherwise. When the price is unknown because the room is gone,
// the requested status is kept, defaulting to pending.
func DeriveStatus(amount decimal.Decimal, price *decimal.Decimal, requested models.PaymentStatus, dueDate, today time.Time) models.PaymentStatus {
	if price == nil {
		if requested == "" {
			return models.PaymentPending
		}
		return requested
	}
	if amount.GreaterThanOrEqual(*price) {
		return models.PaymentPaid
	}
	if requested == models.PaymentLate || duedate.Date(dueDate).Before(today) {
		return models.PaymentLate
	}
	return models.PaymentPending
}

func (s *Service) validatePayment(amount, dueDate string, status models.PaymentStatus) (decimal.Decimal, time.Time, error) {
	fe := fieldErrors{}
	a, problem := parseMoney(amount)
	if problem != "" {
		fe.add("amount", problem)
	}
	d, ok := s.parseDate(dueDate)
	if !ok {
		fe.add("due_date", "must be a date in YYYY-MM-DD format")
	}
	if status != "" && !status.Valid() {
		fe.add("status", "must be paid, pending or late")
	}
	return a, d, fe.err()
}

func (s *Service) roomPrice(ctx context.Context, tenancyID *uuid.UUID) (*decimal.Decimal, error) {
	if tenancyID == nil {
		return nil, nil
	}
	rec, err := s.tenancies.GetByID(ctx, *tenancyID)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.RoomPrice, nil
}

func (s *Service) RecordPayment(ctx context.Context, actor Actor, in PaymentInput) (*models.Payment, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}

	amount, due, err := s.validatePayment(in.Amount, in.DueDate, in.Status)
	if err != nil {
		return nil, err
	}
	rec, err := s.tenancies.GetByID(ctx, in.TenancyID)
	if err != nil {
		return nil, s.internal("get tenancy", err)
	}
	if rec == nil {
		return nil, invalid("tenancy_id", "does not reference an existing tenant")
	}

	now := s.now()
	p := models.Payment{
		TenancyID: &rec.ID,
		Amount:    amount,
		Status:    DeriveStatus(amount, rec.RoomPrice, in.Status, due, s.today()),
		DueDate:   due,
	}
	if p.Status == models.PaymentPaid {
		p.PaidAt = &now
	}

	created, err := s.payments.Create(ctx, p)
	if err != nil {
		return nil, s.internal("record payment", err)
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", created.ID.String()),
		zap.String("tenancy_id", rec.ID.String()),
		zap.String("status", string(created.Status)),
	)
	if s.metrics != nil {
		s.metrics.PaymentsRecorded.WithLabelValues(string(created.Status)).Inc()
	}
	s.publish(events.PaymentRecorded, created)
	return created, nil
}

// UpdatePayment rewrites amount, due date and status. paid_at is stamped
// only when the payment becomes paid for the first time; an existing
// stamp survives any later edit, including one that makes it unpaid.
func (s *Service) UpdatePayment(ctx context.Context, actor Actor, id uuid.UUID, in PaymentInput) (*models.Payment, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}

	amount, due, err := s.validatePayment(in.Amount, in.DueDate, in.Status)
	if err != nil {
		return nil, err
	}
	cur, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, s.internal("get payment", err)
	}
	if cur == nil {
		return nil, notFound("payment")
	}
	price, err := s.roomPrice(ctx, cur.TenancyID)
	if err != nil {
		return nil, s.internal("get room price", err)
	}

	next := *cur
	next.Amount = amount
	next.DueDate = due
	next.Status = DeriveStatus(amount, price, in.Status, due, s.today())
	if next.Status == models.PaymentPaid && cur.PaidAt == nil {
		now := s.now()
		next.PaidAt = &now
	}

	updated, err := s.payments.Update(ctx, next)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("payment")
	}
	if err != nil {
		return nil, s.internal("update payment", err)
	}
	s.publish(events.PaymentUpdated, updated)
	return updated, nil
}

func (s *Service) DeletePayment(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.requireAdmin(); err != nil {
		return err
	}
	err := s.payments.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("payment")
	}
	if err != nil {
		return s.internal("delete payment", err)
	}
	s.publish(events.PaymentDeleted, map[string]string{"id": id.String()})
	return nil
}

func (s *Service) ListPayments(ctx context.Context, actor Actor, f PaymentFilter) ([]PaymentView, error) {
	if err := actor.requireUser(); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("status", "must be paid, pending or late")
	}
	if actor.IsAdmin() {
		return s.listPayments(ctx, f, nil)
	}

	own, err := s.ownTenancies(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.listPayments(ctx, f, own)
}

// ownTenancies is the set of tenancy ids, current and past, that belong to
// the actor.
func (s *Service) ownTenancies(ctx context.Context, actor Actor) (map[uuid.UUID]bool, error) {
	records, err := s.tenancies.List(ctx, "")
	if err != nil {
		return nil, s.internal("list tenancies", err)
	}
	own := make(map[uuid.UUID]bool)
	for _, rec := range records {
		if actor.canSee(rec.UserID) {
			own[rec.ID] = true
		}
	}
	return own, nil
}

// listPayments lists payments newest first. A non-nil only restricts the
// result to payments of those tenancies; the limit then applies after the
// restriction.
func (s *Service) listPayments(ctx context.Context, f PaymentFilter, only map[uuid.UUID]bool) ([]PaymentView, error) {
	filter := repository.PaymentFilter{
		Status:    f.Status,
		TenancyID: f.TenancyID,
		Limit:     f.Limit,
	}
	if only != nil {
		filter.Limit = 0
	}
	records, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, s.internal("list payments", err)
	}

	views := make([]PaymentView, 0, len(records))
	for _, rec := range records {
		if only != nil && (rec.TenancyID == nil || !only[*rec.TenancyID]) {
			continue
		}
		if only != nil && f.Limit > 0 && len(views) == f.Limit {
			break
		}
		v := PaymentView{Payment: rec.Payment, TenantName: formerTenant, RoomNumber: noRoom}
		if rec.TenantName != nil {
			v.TenantName = *rec.TenantName
		}
		if rec.RoomNumber != nil {
			v.RoomNumber = *rec.RoomNumber
		}
		views = append(views, v)
	}
	return views, nil
}

// MonthlyRevenue sums paid payments whose due date falls in the calendar
// month of at, in the business timezone.
func (s *Service) MonthlyRevenue(ctx context.Context, at time.Time) (decimal.Decimal, error) {
	from, to := duedate.MonthRange(at.In(s.loc))
	sum, err := s.payments.SumPaid(ctx, from, to)
	if err != nil {
		return decimal.Zero, s.internal("sum revenue", err)
	}
	return sum, nil
}
