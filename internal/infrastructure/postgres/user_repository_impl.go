package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	"github.com/nimbusworks/accounts-api/internal/domain/repository"
)

const userColumns = `id, email, email_verified, username, display_username, name,
		password_hash, image, role, banned, ban_reason, ban_expires, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Email, &u.EmailVerified, &u.Username, &u.DisplayUsername,
		&u.Name, &u.PasswordHash, &u.Image, &u.Role, &u.Banned, &u.BanReason,
		&u.BanExpires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, display_username, name, password_hash, image, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, email_verified, banned, created_at, updated_at
	`, u.Email, u.Username, u.DisplayUsername, u.Name, u.PasswordHash, u.Image, u.Role)

	if err := row.Scan(&u.ID, &u.EmailVerified, &u.Banned, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, username)
	return scanUser(row)
}

// UpdateProfile writes only the columns present in ProfileChanges, always
// refreshing updated_at. The WHERE clause is the caller's own id; a miss
// surfaces as ErrNotFound via the RETURNING scan rather than a separate
// existence check.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, ch entity.ProfileChanges) (*entity.User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	appendSet := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	appendSet("display_username", ch.DisplayUsername)
	appendSet("name", ch.Name)
	appendSet("image", ch.Image)

	query := `
		UPDATE users
		SET ` + strings.Join(sets, ", ") + `
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role entity.Role) error {
	return r.exec(ctx, `
		UPDATE users
		SET role = $2, updated_at = now()
		WHERE id = $1
	`, id, role)
}

// SetBan binds ban_reason as a plain string: the column is NOT NULL
// with an empty-string default, so an unban clears it to "" rather
// than NULL.
func (r *UserRepository) SetBan(ctx context.Context, id string, banned bool, reason string, expires *time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET banned = $2, ban_reason = $3, ban_expires = $4, updated_at = now()
		WHERE id = $1
	`, id, banned, reason, expires)
}

func (r *UserRepository) SetEmailVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `
		UPDATE users
		SET email_verified = true, updated_at = now()
		WHERE id = $1
	`, id)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
