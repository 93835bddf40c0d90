package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

const userColumns = `id, real_id, nickname, name, role, created_at, deleted_at`

// FindActiveByRealID returns the user with realID unless it was soft deleted.
func (s *Store) FindActiveByRealID(ctx context.Context, realID string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE real_id = ? AND deleted_at IS NULL`,
		realID,
	)
	return scanUser(row)
}

// GetUserByID returns a user by its internal id, deleted or not.
func (s *Store) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// CreateUser inserts u and returns it with the generated id.
func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (real_id, nickname, name, role) VALUES (?, ?, ?, ?)`,
		u.RealID, u.Nickname, u.Name, u.Role.String(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.User{}, store.ErrAlreadyExists
		}
		return domain.User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return s.GetUserByID(ctx, id)
}

// SoftDelete stamps deleted_at. Tokens already issued to the user stop
// resolving on their next request.
func (s *Store) SoftDelete(ctx context.Context, realID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE real_id = ? AND deleted_at IS NULL`,
		realID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		role      string
		deletedAt sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.RealID, &u.Nickname, &u.Name, &role, &u.CreatedAt, &deletedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}

	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: user %d: %w", store.ErrInvalidRecord, u.ID, err)
	}
	u.Role = r
	u.DeletedAt = mapNullTimePtr(deletedAt)
	return u, nil
}
