package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
	"github.com/shopspring/decimal"
)

// RoomInput is a new room. Price is the decimal text as submitted.
type RoomInput struct {
	RoomNumber string
	Price      string
	Status     models.RoomStatus
	Floor      string
	Facilities string
}

// RoomUpdate is a partial room edit. Nil fields are left alone.
type RoomUpdate struct {
	RoomNumber *string
	Price      *string
	Status     *models.RoomStatus
	Floor      *string
	Facilities *string
}

// maxMoney is the first value that no longer fits the NUMERIC(12, 0)
// price and amount columns.
var maxMoney = decimal.New(1, 12)

// parseMoney accepts whole rupiah from 0 to 999,999,999,999.
func parseMoney(v string) (decimal.Decimal, string) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Decimal{}, "must be a number"
	}
	if d.IsNegative() {
		return decimal.Decimal{}, "must not be negative"
	}
	if !d.Equal(d.Truncate(0)) {
		return decimal.Decimal{}, "must be a whole number"
	}
	if d.GreaterThanOrEqual(maxMoney) {
		return decimal.Decimal{}, "must be less than 1000000000000"
	}
	return d.Truncate(0), ""
}

// adminStatus reports whether an admin may put a room into st directly.
// "occupied" is only ever set by check-in.
func adminStatus(st models.RoomStatus) bool {
	return st == models.RoomAvailable || st == models.RoomMaintenance
}

func (s *Service) CreateRoom(ctx context.Context, actor Actor, in RoomInput) (*models.Room, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	number := strings.TrimSpace(in.RoomNumber)
	if number == "" {
		fe.add("room_number", "is required")
	}
	price, problem := parseMoney(in.Price)
	if problem != "" {
		fe.add("price", problem)
	}
	status := in.Status
	if status == "" {
		status = models.RoomAvailable
	}
	if !adminStatus(status) {
		fe.add("status", "must be available or maintenance")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	room, err := s.rooms.Create(ctx, models.Room{
		RoomNumber: number,
		Price:      price,
		Status:     status,
		Floor:      strings.TrimSpace(in.Floor),
		Facilities: strings.TrimSpace(in.Facilities),
	})
	if errors.Is(err, repository.ErrDuplicateRoomNumber) {
		return nil, conflict("room number already exists", err)
	}
	if err != nil {
		return nil, s.internal("create room", err)
	}
	return room, nil
}

// ListRooms needs no actor; it backs the public room listing.
func (s *Service) ListRooms(ctx context.Context, status models.RoomStatus) ([]models.Room, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "must be available, occupied or maintenance")
	}
	rooms, err := s.rooms.List(ctx, status)
	if err != nil {
		return nil, s.internal("list rooms", err)
	}
	return rooms, nil
}

func (s *Service) GetRoom(ctx context.Context, actor Actor, id uuid.UUID) (*models.Room, error) {
	if err := actor.requireUser(); err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, s.internal("get room", err)
	}
	if room == nil {
		return nil, notFound("room")
	}
	return room, nil
}

func (s *Service) UpdateRoom(ctx context.Context, actor Actor, id uuid.UUID, in RoomUpdate) (*models.Room, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}

	var patch repository.RoomPatch
	fe := fieldErrors{}
	if in.RoomNumber != nil {
		number := strings.TrimSpace(*in.RoomNumber)
		if number == "" {
			fe.add("room_number", "must not be empty")
		}
		patch.RoomNumber = &number
	}
	if in.Price != nil {
		price, problem := parseMoney(*in.Price)
		if problem != "" {
			fe.add("price", problem)
		}
		patch.Price = &price
	}
	if in.Status != nil && !in.Status.Valid() {
		fe.add("status", "must be available or maintenance")
	}
	if in.Floor != nil {
		floor := strings.TrimSpace(*in.Floor)
		patch.Floor = &floor
	}
	if in.Facilities != nil {
		facilities := strings.TrimSpace(*in.Facilities)
		patch.Facilities = &facilities
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	if in.Status != nil {
		if !adminStatus(*in.Status) {
			return nil, conflict("room status occupied is set by check-in only", nil)
		}
		patch.Status = in.Status
	}

	room, err := s.rooms.Update(ctx, id, patch)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound("room")
	case errors.Is(err, repository.ErrDuplicateRoomNumber):
		return nil, conflict("room number already exists", err)
	case errors.Is(err, repository.ErrRoomOccupied):
		return nil, conflict("room is occupied; check the tenant out first", err)
	case err != nil:
		return nil, s.internal("update room", err)
	}
	return room, nil
}

func (s *Service) DeleteRoom(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.requireAdmin(); err != nil {
		return err
	}
	err := s.rooms.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound("room")
	case errors.Is(err, repository.ErrRoomOccupied):
		return conflict("room is occupied; check the tenant out first", err)
	case err != nil:
		return s.internal("delete room", err)
	}
	return nil
}
