package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/hidalgo-logistics/tracking/internal/db"
	"github.com/hidalgo-logistics/tracking/internal/repository"
)

// UserRepo is the durable user store. Unlike the in-memory directory's
// legacy plaintext check, credentials here are bcrypt-hashed.
type UserRepo struct {
	db db.DB
}

func NewUserRepo(db db.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *repository.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
        INSERT INTO users (id, name, email, role, active, password, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, u.ID, u.Name, u.Email, u.Role, u.Active, string(hashedPassword), u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	var u repository.User
	err := r.db.Get(ctx, &u, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ValidateUser(ctx context.Context, email, password string) (bool, error) {
	var hashedPassword string
	err := r.db.ExecQueryRow(ctx,
		"SELECT password FROM users WHERE email = $1 AND active", email).Scan(&hashedPassword)
	if err != nil {
		return false, repository.ErrObjectNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]*repository.User, error) {
	var users []*repository.User
	err := r.db.Select(ctx, &users,
		"SELECT * FROM users WHERE role = $1 ORDER BY created_at ASC", role)
	return users, err
}
