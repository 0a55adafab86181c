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

const paymentColumns = `id, tenancy_id, amount, status, due_date, paid_at, created_at, updated_at`

type PaymentStore struct {
	pool *pgxpool.Pool
}

func NewPaymentStore(pool *pgxpool.Pool) *PaymentStore {
	return &PaymentStore{pool: pool}
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID,
		&p.TenancyID,
		&p.Amount,
		&p.Status,
		&p.DueDate,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PaymentStore) Create(ctx context.Context, p models.Payment) (*models.Payment, error) {
	query := `
		INSERT INTO payments (tenancy_id, amount, status, due_date, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING ` + paymentColumns

	out, err := scanPayment(s.pool.QueryRow(ctx, query, p.TenancyID, p.Amount, p.Status, p.DueDate, p.PaidAt))
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	return out, nil
}

func (s *PaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	out, err := scanPayment(s.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return out, nil
}

// Update writes the fields the ledger decided on. paid_at is written as
// given; COALESCE keeps an existing stamp even if the caller passes nil.
func (s *PaymentStore) Update(ctx context.Context, p models.Payment) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET amount = $2, status = $3, due_date = $4,
		    paid_at = COALESCE(paid_at, $5), updated_at = now()
		WHERE id = $1
		RETURNING ` + paymentColumns

	out, err := scanPayment(s.pool.QueryRow(ctx, query, p.ID, p.Amount, p.Status, p.DueDate, p.PaidAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update payment: %w", err)
	}
	return out, nil
}

func (s *PaymentStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *PaymentStore) List(ctx context.Context, filter repository.PaymentFilter) ([]models.PaymentRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.TenancyID != nil {
		args = append(args, *filter.TenancyID)
		where = append(where, fmt.Sprintf("p.tenancy_id = $%d", len(args)))
	}

	query := `
		SELECT p.id, p.tenancy_id, p.amount, p.status, p.due_date, p.paid_at, p.created_at, p.updated_at,
		       u.name, r.room_number
		FROM payments p
		LEFT JOIN tenancies t ON t.id = p.tenancy_id
		LEFT JOIN users u ON u.id = t.user_id
		LEFT JOIN rooms r ON r.id = t.room_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY p.created_at DESC, p.id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	records := make([]models.PaymentRecord, 0)
	for rows.Next() {
		var rec models.PaymentRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.TenancyID,
			&rec.Amount,
			&rec.Status,
			&rec.DueDate,
			&rec.PaidAt,
			&rec.CreatedAt,
			&rec.UpdatedAt,
			&rec.TenantName,
			&rec.RoomNumber,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return records, nil
}

func (s *PaymentStore) SumPaid(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE status = 'paid' AND due_date >= $1 AND due_date < $2`, from, to).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum paid payments: %w", err)
	}
	return sum, nil
}
