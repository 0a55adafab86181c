package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
)

const roomColumns = `id, room_number, price, status, floor, facilities, created_at, updated_at`

type RoomStore struct {
	pool *pgxpool.Pool
}

func NewRoomStore(pool *pgxpool.Pool) *RoomStore {
	return &RoomStore{pool: pool}
}

func scanRoom(row pgx.Row) (*models.Room, error) {
	var r models.Room
	err := row.Scan(
		&r.ID,
		&r.RoomNumber,
		&r.Price,
		&r.Status,
		&r.Floor,
		&r.Facilities,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RoomStore) Create(ctx context.Context, room models.Room) (*models.Room, error) {
	query := `
		INSERT INTO rooms (room_number, price, status, floor, facilities, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING ` + roomColumns

	r, err := scanRoom(s.pool.QueryRow(ctx, query,
		room.RoomNumber, room.Price, room.Status, room.Floor, room.Facilities))
	if err != nil {
		if isUniqueViolation(err, "rooms_room_number_key") {
			return nil, repository.ErrDuplicateRoomNumber
		}
		return nil, fmt.Errorf("insert room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	r, err := scanRoom(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) List(ctx context.Context, status models.RoomStatus) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY room_number`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]models.Room, 0)
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, nil
}

// Update builds the SET clause from the non-nil patch fields. A status
// change is only applied while the room is not occupied; the row lock taken
// by the UPDATE serializes it against a concurrent check-in.
func (s *RoomStore) Update(ctx context.Context, id uuid.UUID, patch repository.RoomPatch) (*models.Room, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current models.RoomStatus
	err = tx.QueryRow(ctx, `SELECT status FROM rooms WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lock room: %w", err)
	}
	if patch.Status != nil && *patch.Status != current && current == models.RoomOccupied {
		return nil, repository.ErrRoomOccupied
	}

	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.RoomNumber != nil {
		add("room_number", *patch.RoomNumber)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Floor != nil {
		add("floor", *patch.Floor)
	}
	if patch.Facilities != nil {
		add("facilities", *patch.Facilities)
	}

	query := `UPDATE rooms SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + roomColumns
	r, err := scanRoom(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err, "rooms_room_number_key") {
			return nil, repository.ErrDuplicateRoomNumber
		}
		return nil, fmt.Errorf("update room: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit room update: %w", err)
	}
	return r, nil
}

func (s *RoomStore) Delete(ctx context.Context, id uuid.UUID) error {
	// The status predicate and the delete are one statement, so a room
	// cannot be checked into between the check and the removal.
	tag, err := s.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1 AND status <> 'occupied'`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check room: %w", err)
	}
	if exists {
		return repository.ErrRoomOccupied
	}
	return repository.ErrNotFound
}

func (s *RoomStore) CountByStatus(ctx context.Context) (map[models.RoomStatus]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, count(*) FROM rooms GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RoomStatus]int)
	for rows.Next() {
		var status models.RoomStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan room count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room counts: %w", err)
	}
	return counts, nil
}
