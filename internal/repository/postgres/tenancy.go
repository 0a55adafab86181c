package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
	"github.com/shopspring/decimal"
)

const tenancyColumns = `id, user_id, room_id, start_date, end_date, due_day, status, created_at`

type TenancyStore struct {
	pool *pgxpool.Pool
}

func NewTenancyStore(pool *pgxpool.Pool) *TenancyStore {
	return &TenancyStore{pool: pool}
}

func scanTenancy(row pgx.Row) (*models.Tenancy, error) {
	var t models.Tenancy
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.RoomID,
		&t.StartDate,
		&t.EndDate,
		&t.DueDay,
		&t.Status,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CheckIn runs the whole check-in as one transaction:
//
//  1. Compare-and-set the room from available to occupied. The UPDATE takes
//     the row lock, so a concurrent check-in on the same room waits and then
//     sees status = 'occupied' and matches nothing.
//  2. Resolve the user (find-or-create by email, or verify the given id).
//  3. Insert the active tenancy. The partial unique index on active
//     tenancies per room is the last line should step 1 ever be bypassed.
//
// Any error rolls back all three steps.
func (s *TenancyStore) CheckIn(ctx context.Context, p repository.CheckInParams) (*models.Tenancy, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE rooms SET status = 'occupied', updated_at = now()
		WHERE id = $1 AND status = 'available'`, p.RoomID)
	if err != nil {
		return nil, fmt.Errorf("claim room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, p.RoomID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check room: %w", err)
		}
		if !exists {
			return nil, repository.ErrNotFound
		}
		return nil, repository.ErrRoomUnavailable
	}

	userID, err := resolveUser(ctx, tx, p)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO tenancies (user_id, room_id, start_date, due_day, status, created_at)
		VALUES ($1, $2, $3, $4, 'active', now())
		RETURNING ` + tenancyColumns

	t, err := scanTenancy(tx.QueryRow(ctx, query, userID, p.RoomID, p.StartDate, p.DueDay))
	if err != nil {
		if isUniqueViolation(err, "uniq_tenancies_active_room") {
			return nil, repository.ErrRoomUnavailable
		}
		return nil, fmt.Errorf("insert tenancy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit check-in: %w", err)
	}
	return t, nil
}

func resolveUser(ctx context.Context, tx pgx.Tx, p repository.CheckInParams) (uuid.UUID, error) {
	if p.UserID != nil {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, *p.UserID).Scan(&exists); err != nil {
			return uuid.Nil, fmt.Errorf("check user: %w", err)
		}
		if !exists {
			return uuid.Nil, repository.ErrNotFound
		}
		return *p.UserID, nil
	}
	if p.Tenant == nil {
		return uuid.Nil, fmt.Errorf("check-in without user id or tenant profile")
	}

	email := strings.ToLower(p.Tenant.Email)

	// ON CONFLICT DO NOTHING returns no row when the email already exists;
	// the existing user is then looked up in the same transaction.
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, 'tenant', now())
		ON CONFLICT (email) DO NOTHING
		RETURNING id`,
		p.Tenant.Name, email, p.Tenant.Phone, p.Tenant.PasswordHash,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("insert tenant user: %w", err)
	}

	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("find tenant user: %w", err)
	}
	return id, nil
}

// CheckOut moves an active tenancy to history and frees its room in one
// transaction. Only active tenancies match, so a second check-out of the
// same tenancy reports ErrNotFound.
func (s *TenancyStore) CheckOut(ctx context.Context, tenancyID uuid.UUID, endDate time.Time) (*models.Tenancy, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE tenancies SET status = 'history', end_date = $2
		WHERE id = $1 AND status = 'active'
		RETURNING ` + tenancyColumns

	t, err := scanTenancy(tx.QueryRow(ctx, query, tenancyID, endDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("end tenancy: %w", err)
	}

	if t.RoomID != nil {
		_, err = tx.Exec(ctx, `
			UPDATE rooms SET status = 'available', updated_at = now()
			WHERE id = $1 AND status = 'occupied'`, *t.RoomID)
		if err != nil {
			return nil, fmt.Errorf("release room: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit check-out: %w", err)
	}
	return t, nil
}

const tenancyRecordSelect = `
	SELECT t.id, t.user_id, t.room_id, t.start_date, t.end_date, t.due_day, t.status, t.created_at,
	       u.name, u.email, u.phone, r.room_number, r.price
	FROM tenancies t
	JOIN users u ON u.id = t.user_id
	LEFT JOIN rooms r ON r.id = t.room_id`

func scanTenancyRecord(row pgx.Row) (*models.TenancyRecord, error) {
	var rec models.TenancyRecord
	var price decimal.NullDecimal
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.RoomID,
		&rec.StartDate,
		&rec.EndDate,
		&rec.DueDay,
		&rec.Status,
		&rec.CreatedAt,
		&rec.TenantName,
		&rec.TenantEmail,
		&rec.TenantPhone,
		&rec.RoomNumber,
		&price,
	)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		rec.RoomPrice = &price.Decimal
	}
	return &rec, nil
}

func (s *TenancyStore) GetByID(ctx context.Context, id uuid.UUID) (*models.TenancyRecord, error) {
	rec, err := scanTenancyRecord(s.pool.QueryRow(ctx, tenancyRecordSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenancy: %w", err)
	}
	return rec, nil
}

func (s *TenancyStore) List(ctx context.Context, status models.TenancyStatus) ([]models.TenancyRecord, error) {
	query := tenancyRecordSelect
	var args []any
	if status != "" {
		query += ` WHERE t.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenancies: %w", err)
	}
	defer rows.Close()

	records := make([]models.TenancyRecord, 0)
	for rows.Next() {
		rec, err := scanTenancyRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenancy: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenancies: %w", err)
	}
	return records, nil
}

func (s *TenancyStore) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM tenancies WHERE status = 'active'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active tenancies: %w", err)
	}
	return n, nil
}
