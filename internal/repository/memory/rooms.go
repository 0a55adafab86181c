package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
)

type RoomStore struct {
	s *Store
}

// roomNumberTaken must be called with the lock held.
func (s *Store) roomNumberTaken(number string, except uuid.UUID) bool {
	for id, r := range s.rooms {
		if id != except && r.RoomNumber == number {
			return true
		}
	}
	return false
}

func (rs *RoomStore) Create(_ context.Context, room models.Room) (*models.Room, error) {
	s := rs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roomNumberTaken(room.RoomNumber, uuid.Nil) {
		return nil, repository.ErrDuplicateRoomNumber
	}
	now := s.now()
	room.ID = s.newID()
	room.CreatedAt = now
	room.UpdatedAt = now
	s.rooms[room.ID] = room
	return &room, nil
}

func (rs *RoomStore) GetByID(_ context.Context, id uuid.UUID) (*models.Room, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	r, ok := rs.s.rooms[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (rs *RoomStore) List(_ context.Context, status models.RoomStatus) ([]models.Room, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	rooms := make([]models.Room, 0, len(rs.s.rooms))
	for _, r := range rs.s.rooms {
		if status == "" || r.Status == status {
			rooms = append(rooms, r)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomNumber < rooms[j].RoomNumber })
	return rooms, nil
}

func (rs *RoomStore) Update(_ context.Context, id uuid.UUID, patch repository.RoomPatch) (*models.Room, error) {
	s := rs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Status != nil && *patch.Status != r.Status && r.Status == models.RoomOccupied {
		return nil, repository.ErrRoomOccupied
	}
	if patch.RoomNumber != nil {
		if s.roomNumberTaken(*patch.RoomNumber, id) {
			return nil, repository.ErrDuplicateRoomNumber
		}
		r.RoomNumber = *patch.RoomNumber
	}
	if patch.Price != nil {
		r.Price = *patch.Price
	}
	if patch.Status != nil {
		r.Status = *patch.Status
	}
	if patch.Floor != nil {
		r.Floor = *patch.Floor
	}
	if patch.Facilities != nil {
		r.Facilities = *patch.Facilities
	}
	r.UpdatedAt = s.now()
	s.rooms[id] = r
	return &r, nil
}

// Delete removes a room that is not occupied. Tenancies that pointed at it
// keep their history with a nil room, like ON DELETE SET NULL.
func (rs *RoomStore) Delete(_ context.Context, id uuid.UUID) error {
	s := rs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.Status == models.RoomOccupied {
		return repository.ErrRoomOccupied
	}
	delete(s.rooms, id)
	for tid, t := range s.tenancies {
		if t.RoomID != nil && *t.RoomID == id {
			t.RoomID = nil
			s.tenancies[tid] = t
		}
	}
	return nil
}

func (rs *RoomStore) CountByStatus(_ context.Context) (map[models.RoomStatus]int, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	counts := make(map[models.RoomStatus]int)
	for _, r := range rs.s.rooms {
		counts[r.Status]++
	}
	return counts, nil
}
