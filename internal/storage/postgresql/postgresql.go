package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"jwt_auth/internal/domain/models"
	"jwt_auth/internal/storage"
)

// Storage is a flat email -> JSON document table.
type Storage struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

const (
	// tables
	accountsTable = "accounts"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	email TEXT PRIMARY KEY,
	data  JSONB NOT NULL
)`

func New(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Migrate creates the accounts table if it does not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgresql.Migrate"

	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Close() error {
	s.db.Close()

	return nil
}

// User returns the account stored under email
func (s *Storage) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgresql.User"

	query, args, err := s.sb.Select("data").From(accountsTable).Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var data []byte
	if err := s.db.QueryRow(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return models.User{}, fmt.Errorf("%s: decode: %w", op, err)
	}

	return user, nil
}

// SaveUser inserts or replaces the account stored under email
func (s *Storage) SaveUser(ctx context.Context, email string, user models.User) error {
	const op = "storage.postgresql.SaveUser"

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	query, args, err := s.sb.Insert(accountsTable).
		Columns("email", "data").
		Values(email, string(data)).
		Suffix("ON CONFLICT (email) DO UPDATE SET data = EXCLUDED.data").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, email string) error {
	const op = "storage.postgresql.DeleteUser"

	query, args, err := s.sb.Delete(accountsTable).Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
