package database

import (
	"context"
	"errors"
	"time"

	"datashare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmailTaken = errors.New("this email is already in use")
	ErrLoginTaken = errors.New("this login is already in use")
)

const userColumns = `id, email, login, first_name, last_name, picture, password_hash, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Login,
		&user.FirstName,
		&user.LastName,
		&user.Picture,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

type CreateUserParams struct {
	Email        string
	Login        *string
	FirstName    *string
	LastName     *string
	Picture      *string
	PasswordHash string
}

// CreateUser inserts a new user row. Uniqueness of email and login is
// enforced by the unique indexes, so a concurrent duplicate insert comes
// back as ErrEmailTaken/ErrLoginTaken instead of racing an existence check.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	query := `
		INSERT INTO users (email, login, first_name, last_name, picture, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	row := q.db.QueryRow(ctx, query,
		arg.Email,
		arg.Login,
		arg.FirstName,
		arg.LastName,
		arg.Picture,
		arg.PasswordHash,
		time.Now(),
	)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "ix_users_login":
				return nil, ErrLoginTaken
			default:
				return nil, ErrEmailTaken
			}
		}
		return nil, err
	}

	return user, nil
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.db.QueryRow(ctx, query, id))
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(q.db.QueryRow(ctx, query, email))
}

func (q *Queries) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (q *Queries) LoginTaken(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)`, login).Scan(&exists)
	return exists, err
}
