package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/shopspring/decimal"
)

// Sentinel errors shared by every store implementation. The service layer
// translates them into its own error kinds; anything else coming out of a
// store is treated as an internal failure.
var (
	ErrNotFound            = errors.New("not found")
	ErrRoomUnavailable     = errors.New("room not available")
	ErrRoomOccupied        = errors.New("room is occupied")
	ErrDuplicateRoomNumber = errors.New("room number already exists")
	ErrEmailTaken          = errors.New("email already registered")
)

// RoomPatch carries the fields of a partial room update. Nil means "keep".
type RoomPatch struct {
	RoomNumber *string
	Price      *decimal.Decimal
	Status     *models.RoomStatus
	Floor      *string
	Facilities *string
}

// RoomRepository owns the rooms table. Lookups return nil, nil when the
// room does not exist, like the rest of the read methods here.
type RoomRepository interface {
	Create(ctx context.Context, room models.Room) (*models.Room, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	// List returns all rooms ordered by room number. status may be empty.
	List(ctx context.Context, status models.RoomStatus) ([]models.Room, error)
	// Update applies patch. Returns ErrNotFound, ErrDuplicateRoomNumber, or
	// ErrRoomOccupied when the patch touches the status of an occupied room.
	Update(ctx context.Context, id uuid.UUID, patch RoomPatch) (*models.Room, error)
	// Delete removes the room. Returns ErrNotFound or ErrRoomOccupied.
	Delete(ctx context.Context, id uuid.UUID) error
	// CountByStatus returns the number of rooms per status.
	CountByStatus(ctx context.Context) (map[models.RoomStatus]int, error)
}

// UserRepository handles user identities (admins and tenants).
type UserRepository interface {
	// Create inserts a user. Returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user models.User) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// NewTenant is the profile used to find-or-create the tenant's user inside
// a check-in. Email is the lookup key; the other fields only apply when a
// new user has to be created.
type NewTenant struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
}

// CheckInParams describes one check-in. Exactly one of UserID and Tenant
// is set.
type CheckInParams struct {
	RoomID    uuid.UUID
	UserID    *uuid.UUID
	Tenant    *NewTenant
	StartDate time.Time
	DueDay    int
}

// TenancyRepository owns tenancies and is the only writer of room status
// after room creation.
type TenancyRepository interface {
	// CheckIn atomically flips the room from available to occupied,
	// resolves the user and inserts an active tenancy. Returns ErrNotFound
	// when the room or user is missing and ErrRoomUnavailable when the
	// room is not available at the moment of the write.
	CheckIn(ctx context.Context, p CheckInParams) (*models.Tenancy, error)

	// CheckOut atomically moves the tenancy to history and frees its room.
	// Returns ErrNotFound unless the tenancy exists and is active.
	CheckOut(ctx context.Context, tenancyID uuid.UUID, endDate time.Time) (*models.Tenancy, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.TenancyRecord, error)
	// List returns tenancies joined with user and room, newest first.
	// status may be empty for all.
	List(ctx context.Context, status models.TenancyStatus) ([]models.TenancyRecord, error)
	CountActive(ctx context.Context) (int, error)
}

type PaymentFilter struct {
	Status    models.PaymentStatus
	TenancyID *uuid.UUID
	// Limit <= 0 means no limit.
	Limit int
}

// PaymentRepository owns payment rows. It never touches rooms or tenancies.
type PaymentRepository interface {
	Create(ctx context.Context, p models.Payment) (*models.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	// Update overwrites amount, status, due date and paid_at. Returns
	// ErrNotFound when the row is gone.
	Update(ctx context.Context, p models.Payment) (*models.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns payments newest first with tenant name and room number
	// joined where they still exist.
	List(ctx context.Context, filter PaymentFilter) ([]models.PaymentRecord, error)
	// SumPaid sums amounts of paid payments with from <= due_date < to.
	SumPaid(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}
