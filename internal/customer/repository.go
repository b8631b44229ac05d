package customer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the customer id does not exist.
var ErrNotFound = errors.New("customer not found")

// Repository persists customers.
type Repository interface {
	Create(ctx context.Context, c Customer) error
	Get(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	UpdateSubaccount(ctx context.Context, id, subaccount string) error
	UpdatePortalKey(ctx context.Context, id string, hash []byte) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed customer repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new customer.
func (r *PostgresRepository) Create(ctx context.Context, c Customer) error {
	customerID, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO customers (id, email, name, pool_subaccount, portal_key_hash, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		customerID, c.Email, c.Name, c.PoolSubaccount, c.PortalKeyHash, c.Status, c.CreatedAt.UTC())
	return err
}

// Get fetches a customer by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return Customer{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, email, name, pool_subaccount, portal_key_hash, status, created_at
        FROM customers WHERE id = $1`, customerID)
	return scanCustomer(row)
}

// List returns all customers ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT id, email, name, pool_subaccount, portal_key_hash, status, created_at
        FROM customers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// UpdateSubaccount stores the customer's external pool subaccount name.
func (r *PostgresRepository) UpdateSubaccount(ctx context.Context, id, subaccount string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE customers SET pool_subaccount = $1 WHERE id = $2`, subaccount, customerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePortalKey stores the hash of a freshly issued portal access key.
func (r *PostgresRepository) UpdatePortalKey(ctx context.Context, id string, hash []byte) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE customers SET portal_key_hash = $1 WHERE id = $2`, hash, customerID)
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

func scanCustomer(row rowScanner) (Customer, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		c         Customer
	)
	if err := row.Scan(&id, &c.Email, &c.Name, &c.PoolSubaccount, &c.PortalKeyHash, &c.Status, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	c.ID = id.String()
	c.CreatedAt = createdAt.UTC()
	return c, nil
}
