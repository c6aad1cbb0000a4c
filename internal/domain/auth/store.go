package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAdminNotFound = errors.New("admin not found")

type Admin struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetAdminByLogin(ctx context.Context, login string) (*Admin, error) {
	var adm Admin
	err := s.DB.QueryRow(ctx, `
    SELECT id, login, password_hash, name, created_at
    FROM admins
    WHERE login = $1
  `, strings.ToLower(strings.TrimSpace(login))).Scan(
		&adm.ID, &adm.Login, &adm.PasswordHash, &adm.Name, &adm.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &adm, nil
}

// Authenticate verifies admin header credentials against the stored hash.
func (s *Store) Authenticate(ctx context.Context, login, password string) (*Admin, error) {
	adm, err := s.GetAdminByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if err := CheckPassword(adm.PasswordHash, password); err != nil {
		return nil, ErrAdminNotFound
	}
	return adm, nil
}
