package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fieldops/internal/domain"
)

// IdentityRepository handles persistence for identities.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	Update(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	List(ctx context.Context, filter IdentityFilter) ([]domain.Identity, error)
}

// IdentityFilter defines query params for identity listing.
type IdentityFilter struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository instantiates the repository.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

const identityColumns = `id, name, email, phone, password_hash, role, is_active, created_at, updated_at`

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO identities (name, email, phone, password_hash, role, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		identity.Name,
		identity.Email,
		identity.Phone,
		identity.PasswordHash,
		string(identity.Role),
		identity.IsActive,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
}

func (r *identityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	const query = `
        UPDATE identities
        SET name=$1, email=$2, phone=$3, password_hash=$4, role=$5, is_active=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		identity.Name,
		identity.Email,
		identity.Phone,
		identity.PasswordHash,
		string(identity.Role),
		identity.IsActive,
		identity.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id=$1`
	return scanIdentity(r.pool.QueryRow(ctx, query, id))
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE LOWER(email)=LOWER($1)`
	return scanIdentity(r.pool.QueryRow(ctx, query, email))
}

func (r *identityRepository) List(ctx context.Context, filter IdentityFilter) ([]domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *identity)
	}
	return result, rows.Err()
}

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var (
		identity domain.Identity
		role     string
	)
	if err := row.Scan(
		&identity.ID,
		&identity.Name,
		&identity.Email,
		&identity.Phone,
		&identity.PasswordHash,
		&role,
		&identity.IsActive,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	identity.Role = domain.Role(role)
	return &identity, nil
}
