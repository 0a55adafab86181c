package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/duedate"
	"github.com/lalith-99/kosboard/internal/events"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
	"go.uber.org/zap"
)

// TenantProfile identifies a tenant by contact details. The email decides
// whether an existing user is reused.
type TenantProfile struct {
	Name  string
	Email string
	Phone string
}

// CheckInInput takes either an existing UserID or a Profile, not both.
type CheckInInput struct {
	UserID    *uuid.UUID
	Profile   *TenantProfile
	RoomID    uuid.UUID
	StartDate string
	DueDay    int
}

// TenancyView is a tenancy as shown to callers. Due is only set for
// active tenancies and is computed fresh for each read.
type TenancyView struct {
	models.TenancyRecord
	Due *duedate.Projection `json:"due,omitempty"`
}

func (s *Service) view(rec models.TenancyRecord, today time.Time) TenancyView {
	v := TenancyView{TenancyRecord: rec}
	if rec.Status == models.TenancyActive {
		p := duedate.Project(rec.DueDay, today, s.policy, s.window)
		v.Due = &p
	}
	return v
}

func (s *Service) validateCheckIn(in CheckInInput) (repository.CheckInParams, error) {
	p := repository.CheckInParams{RoomID: in.RoomID, DueDay: in.DueDay, UserID: in.UserID}

	fe := fieldErrors{}
	if in.RoomID == uuid.Nil {
		fe.add("room_id", "is required")
	}
	if in.DueDay < 1 || in.DueDay > 31 {
		fe.add("due_day", "must be between 1 and 31")
	}
	start, ok := s.parseDate(in.StartDate)
	if !ok {
		fe.add("start_date", "must be a date in YYYY-MM-DD format")
	}
	p.StartDate = start

	switch {
	case in.UserID != nil && in.Profile != nil:
		fe.add("user_id", "give either user_id or a tenant profile, not both")
	case in.UserID == nil && in.Profile == nil:
		fe.add("user_id", "user_id or a tenant profile is required")
	case in.Profile != nil:
		name := strings.TrimSpace(in.Profile.Name)
		if name == "" {
			fe.add("name", "is required")
		}
		email := strings.TrimSpace(in.Profile.Email)
		if !validEmail(email) {
			fe.add("email", "must be a valid email address")
		}
		p.Tenant = &repository.NewTenant{
			Name:  name,
			Email: email,
			Phone: strings.TrimSpace(in.Profile.Phone),
		}
	}
	return p, fe.err()
}

// CheckIn moves a tenant into an available room. Validation and lookups
// happen first; the availability check is then repeated inside the
// repository's atomic unit, so of two concurrent check-ins for one room
// exactly one wins and the other gets a conflict.
func (s *Service) CheckIn(ctx context.Context, actor Actor, in CheckInInput) (view *TenancyView, err error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}
	defer func() { s.countCheckIn(err) }()

	params, err := s.validateCheckIn(in)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, s.internal("get room", err)
	}
	if room == nil {
		return nil, notFound("room")
	}
	if room.Status != models.RoomAvailable {
		return nil, conflict("room is not available", repository.ErrRoomUnavailable)
	}

	if params.UserID != nil {
		user, err := s.users.GetByID(ctx, *params.UserID)
		if err != nil {
			return nil, s.internal("get user", err)
		}
		if user == nil {
			return nil, notFound("user")
		}
	} else {
		hash, err := s.tenantPasswordHash()
		if err != nil {
			return nil, s.internal("hash default password", err)
		}
		params.Tenant.PasswordHash = hash
	}

	tenancy, err := s.tenancies.CheckIn(ctx, params)
	switch {
	case errors.Is(err, repository.ErrRoomUnavailable):
		return nil, conflict("room is not available", err)
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound("room or user")
	case err != nil:
		return nil, s.internal("check in", err)
	}

	rec, err := s.tenancies.GetByID(ctx, tenancy.ID)
	if err != nil {
		return nil, s.internal("get tenancy", err)
	}
	if rec == nil {
		return nil, s.internal("get tenancy", errors.New("tenancy vanished after check-in"))
	}

	s.logger.Info("tenant checked in",
		zap.String("tenancy_id", tenancy.ID.String()),
		zap.String("room_id", in.RoomID.String()),
		zap.String("user_id", tenancy.UserID.String()),
	)
	v := s.view(*rec, s.today())
	s.publish(events.TenantCheckedIn, v)
	return &v, nil
}

func (s *Service) countCheckIn(err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = string(KindOf(err))
	}
	s.metrics.CheckIns.WithLabelValues(result).Inc()
}

// CheckOut ends an active tenancy and frees its room. A tenancy that is
// already history is reported as not found.
func (s *Service) CheckOut(ctx context.Context, actor Actor, tenancyID uuid.UUID) (*models.Tenancy, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}

	tenancy, err := s.tenancies.CheckOut(ctx, tenancyID, s.today())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("active tenant")
	}
	if err != nil {
		return nil, s.internal("check out", err)
	}

	s.logger.Info("tenant checked out", zap.String("tenancy_id", tenancyID.String()))
	if s.metrics != nil {
		s.metrics.CheckOuts.Inc()
	}
	s.publish(events.TenantCheckedOut, tenancy)
	return tenancy, nil
}

func (s *Service) ListTenancies(ctx context.Context, actor Actor, status models.TenancyStatus) ([]TenancyView, error) {
	if err := actor.requireUser(); err != nil {
		return nil, err
	}
	if status != "" && status != models.TenancyActive && status != models.TenancyHistory {
		return nil, invalid("status", "must be active or history")
	}

	records, err := s.tenancies.List(ctx, status)
	if err != nil {
		return nil, s.internal("list tenancies", err)
	}

	today := s.today()
	views := make([]TenancyView, 0, len(records))
	for _, rec := range records {
		if !actor.canSee(rec.UserID) {
			continue
		}
		views = append(views, s.view(rec, today))
	}
	return views, nil
}

func (s *Service) GetTenancy(ctx context.Context, actor Actor, id uuid.UUID) (*TenancyView, error) {
	if err := actor.requireUser(); err != nil {
		return nil, err
	}
	rec, err := s.tenancies.GetByID(ctx, id)
	if err != nil {
		return nil, s.internal("get tenancy", err)
	}
	// Another tenant's record reads as missing rather than forbidden.
	if rec == nil || !actor.canSee(rec.UserID) {
		return nil, notFound("tenant")
	}
	v := s.view(*rec, s.today())
	return &v, nil
}
