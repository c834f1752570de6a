package adapter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	repository "github.com/akashwav/ConnectGo/internal/repository/port"
)

const defaultSearchLimit = 20

// PgUserRepository implements repository.UserDirectory backed by the
// chat.app_user table.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

// Ensure interface is satisfied
var _ repository.UserDirectory = (*PgUserRepository)(nil)

func (r *PgUserRepository) FindByIDs(ctx context.Context, ids []string) ([]repository.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, email
		FROM chat.app_user
		WHERE id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("pg: find users by ids: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *PgUserRepository) Search(ctx context.Context, query string, excludeUserID string, limit int) ([]repository.User, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, email
		FROM chat.app_user
		WHERE (name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR id::text <> $2)
		ORDER BY name
		LIMIT $3
	`, query, excludeUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("pg: search users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanUsers(rows pgRows) ([]repository.User, error) {
	var users []repository.User
	for rows.Next() {
		var u repository.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("pg: scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: iterate users: %w", err)
	}
	return users, nil
}
