package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB stores identities in the users and user_favorites tables.
type UserDB struct {
	conn *sql.DB
}

// Create inserts a new user and fills in ID and CreatedAt.
//
// The UNIQUE index on email is the last line of defence against two
// registrations racing past the service's pre-check; a violation comes back
// as the same Conflict the pre-check produces.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "email already registered")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.getOne(ctx, "id", id)
}

// GetByEmail looks a user up by email. The column collation makes the
// comparison case-insensitive.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.getOne(ctx, "email", email)
}

// getOne is shared by the two lookups. column is always a constant from
// this file, never user input.
func (u *UserDB) getOne(ctx context.Context, column, value string) (*model.User, error) {
	var user model.User

	err := u.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM users WHERE `+column+` = ?`,
		value,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", value)
		}
		return nil, fmt.Errorf("sqlite: getting user by %s: %w", column, err)
	}

	favorites, err := listFavorites(ctx, u.conn, user.ID)
	if err != nil {
		return nil, err
	}
	user.Favorites = favorites

	return &user, nil
}

// ToggleFavorite flips one module in the user's favorites inside a
// transaction, so two concurrent toggles of the same pair cannot both insert.
func (u *UserDB) ToggleFavorite(ctx context.Context, userID, moduleID string) ([]string, bool, error) {
	tx, err := u.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: beginning favorite toggle: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, userID).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: checking user %s: %w", userID, err)
	}
	if exists == 0 {
		return nil, false, apperror.NotFound("user", userID)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM user_favorites WHERE user_id = ? AND module_id = ?`,
		userID, moduleID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: removing favorite: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	added := removed == 0
	if added {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_favorites (user_id, module_id) VALUES (?, ?)`,
			userID, moduleID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("sqlite: adding favorite: %w", err)
		}
	}

	favorites, err := listFavorites(ctx, tx, userID)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("sqlite: committing favorite toggle: %w", err)
	}

	return favorites, added, nil
}

// querier is the part of *sql.DB and *sql.Tx that listFavorites needs.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listFavorites(ctx context.Context, q querier, userID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT module_id FROM user_favorites WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites: %w", err)
	}
	defer rows.Close()

	favorites := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite row: %w", err)
		}
		favorites = append(favorites, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}

	return favorites, nil
}
