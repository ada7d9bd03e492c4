package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eedition-gateway/internal/domain"
)

// ReaderRepository defines persistence access for mirrored host accounts.
type ReaderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reader, error)
	GetByLogin(ctx context.Context, login string) (*domain.Reader, error)
	Upsert(ctx context.Context, reader *domain.Reader) error
}

type readerRepository struct {
	pool *pgxpool.Pool
}

// NewReaderRepository returns a Postgres-backed implementation.
func NewReaderRepository(pool *pgxpool.Pool) ReaderRepository {
	return &readerRepository{pool: pool}
}

func (r *readerRepository) GetByID(ctx context.Context, id string) (*domain.Reader, error) {
	const query = `
        SELECT id, login, email, display_name, slug, roles, created_at, updated_at
        FROM readers WHERE id=$1`

	var reader domain.Reader
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&reader.ID,
		&reader.Login,
		&reader.Email,
		&reader.DisplayName,
		&reader.Slug,
		&reader.Roles,
		&reader.CreatedAt,
		&reader.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &reader, nil
}

func (r *readerRepository) GetByLogin(ctx context.Context, login string) (*domain.Reader, error) {
	const query = `
        SELECT id, login, email, display_name, slug, roles, created_at, updated_at
        FROM readers WHERE login=$1`

	var reader domain.Reader
	if err := r.pool.QueryRow(ctx, query, login).Scan(
		&reader.ID,
		&reader.Login,
		&reader.Email,
		&reader.DisplayName,
		&reader.Slug,
		&reader.Roles,
		&reader.CreatedAt,
		&reader.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &reader, nil
}

func (r *readerRepository) Upsert(ctx context.Context, reader *domain.Reader) error {
	const query = `
        INSERT INTO readers (login, email, display_name, slug, roles)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (login) DO UPDATE
        SET email=EXCLUDED.email,
            display_name=EXCLUDED.display_name,
            slug=EXCLUDED.slug,
            roles=EXCLUDED.roles,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		reader.Login,
		reader.Email,
		reader.DisplayName,
		reader.Slug,
		reader.Roles,
	).Scan(&reader.ID, &reader.CreatedAt, &reader.UpdatedAt)
}
