package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance:
		return true
	}
	return false
}

// Room is a rentable unit in the boarding house.
//
// Status is owned by the tenancy lifecycle: it is "occupied" exactly when an
// active Tenancy points at the room. Admins may only toggle between
// "available" and "maintenance".
//
// Price is a decimal because rent is stored as NUMERIC(12,0) rupiah and
// compared against payment amounts; float rounding must never decide
// whether a payment counts as paid.
type Room struct {
	ID         uuid.UUID       `json:"id"`
	RoomNumber string          `json:"room_number"`
	Price      decimal.Decimal `json:"price"`
	Status     RoomStatus      `json:"status"`
	Floor      string          `json:"floor"`
	Facilities string          `json:"facilities"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTenant Role = "tenant"
)

// User is anyone who can be referenced by a tenancy or log in.
// Tenants are created implicitly at check-in, keyed by email.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type TenancyStatus string

const (
	TenancyActive  TenancyStatus = "active"
	TenancyHistory TenancyStatus = "history"
)

// Tenancy links a user to a room from StartDate on. DueDay is the day of
// month rent is due (1-31). RoomID is nil once the room has been deleted.
type Tenancy struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	RoomID    *uuid.UUID    `json:"room_id"`
	StartDate time.Time     `json:"start_date"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	DueDay    int           `json:"due_day"`
	Status    TenancyStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentLate    PaymentStatus = "late"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentLate:
		return true
	}
	return false
}

// Payment is one rent transaction recorded by an admin. PaidAt is stamped
// the first time the payment becomes "paid" and is never moved afterwards.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	TenancyID *uuid.UUID      `json:"tenancy_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    PaymentStatus   `json:"status"`
	DueDate   time.Time       `json:"due_date"`
	PaidAt    *time.Time      `json:"paid_at"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TenancyRecord is a tenancy joined with its user and (possibly deleted) room,
// as returned by the repository read path.
type TenancyRecord struct {
	Tenancy
	TenantName  string           `json:"tenant_name"`
	TenantEmail string           `json:"tenant_email"`
	TenantPhone string           `json:"tenant_phone"`
	RoomNumber  *string          `json:"room_number"`
	RoomPrice   *decimal.Decimal `json:"room_price"`
}

// PaymentRecord is a payment joined with whatever is left of its tenancy.
// Pointers are nil when the referenced rows are gone.
type PaymentRecord struct {
	Payment
	TenantName *string `json:"-"`
	RoomNumber *string `json:"-"`
}
