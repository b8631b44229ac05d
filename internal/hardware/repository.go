package hardware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the miner id does not exist.
var ErrNotFound = errors.New("miner not found")

// Repository persists miner inventory.
type Repository interface {
	Create(ctx context.Context, m Miner) error
	Get(ctx context.Context, id string) (Miner, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Miner, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// PostgresRepository stores miners in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a miner record.
func (r *PostgresRepository) Create(ctx context.Context, m Miner) error {
	minerID, err := uuid.Parse(m.ID)
	if err != nil {
		return err
	}
	customerID, err := uuid.Parse(m.CustomerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO miners (id, customer_id, model, hashrate_ths, power_watts, rack, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		minerID, customerID, m.Model, m.HashrateTHs, m.PowerWatts, m.Rack, m.Status, m.CreatedAt.UTC())
	return err
}

// Get fetches a miner by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Miner, error) {
	minerID, err := uuid.Parse(id)
	if err != nil {
		return Miner{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, customer_id, model, hashrate_ths, power_watts, rack, status, created_at
        FROM miners WHERE id = $1`, minerID)
	return scanMiner(row)
}

// ListByCustomer returns all machines racked for a customer.
func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID string) ([]Miner, error) {
	owner, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	rows, err := r.db.Query(ctx, `SELECT id, customer_id, model, hashrate_ths, power_watts, rack, status, created_at
        FROM miners WHERE customer_id = $1 ORDER BY created_at`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var miners []Miner
	for rows.Next() {
		m, err := scanMiner(rows)
		if err != nil {
			return nil, err
		}
		miners = append(miners, m)
	}
	return miners, rows.Err()
}

// UpdateStatus records a lifecycle transition.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	minerID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE miners SET status = $1 WHERE id = $2`, status, minerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMiner(row rowScanner) (Miner, error) {
	var (
		id         uuid.UUID
		customerID uuid.UUID
		createdAt  time.Time
		m          Miner
	)
	if err := row.Scan(&id, &customerID, &m.Model, &m.HashrateTHs, &m.PowerWatts, &m.Rack, &m.Status, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Miner{}, ErrNotFound
		}
		return Miner{}, err
	}
	m.ID = id.String()
	m.CustomerID = customerID.String()
	m.CreatedAt = createdAt.UTC()
	return m, nil
}
