package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fieldops/internal/domain"
)

// CustomerFilter captures customer listing parameters.
type CustomerFilter struct {
	TechnicianID *string
	Limit        int
	Offset       int
}

// CustomerRepository encapsulates customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByLeadID(ctx context.Context, leadID string) (*domain.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error)
	AssignTechnician(ctx context.Context, customerID string, technicianID *string) error
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerColumns = `id, lead_id, name, phone, email, address, system_size_kw::float8, technician_id, installed_at, created_at, updated_at`

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (lead_id, name, phone, email, address, system_size_kw, technician_id, installed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		customer.LeadID,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.Address,
		customer.SystemSizeKW,
		customer.TechnicianID,
		customer.InstalledAt,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id=$1`
	return scanCustomer(r.pool.QueryRow(ctx, query, id))
}

func (r *customerRepository) GetByLeadID(ctx context.Context, leadID string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE lead_id=$1`
	return scanCustomer(r.pool.QueryRow(ctx, query, leadID))
}

func (r *customerRepository) List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	args := []any{}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		query += fmt.Sprintf(" WHERE technician_id=$%d", len(args))
	}
	query += " ORDER BY created_at DESC" + pageClause(filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *customer)
	}
	return result, rows.Err()
}

func (r *customerRepository) AssignTechnician(ctx context.Context, customerID string, technicianID *string) error {
	const query = `UPDATE customers SET technician_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, technicianID, customerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.LeadID,
		&customer.Name,
		&customer.Phone,
		&customer.Email,
		&customer.Address,
		&customer.SystemSizeKW,
		&customer.TechnicianID,
		&customer.InstalledAt,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}
