package persistence

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStorage хранит черновики оформления заказа в PostgreSQL.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage создаёт хранилище и инициализирует схему БД через миграции.
func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStorage{pool: pool}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStorage) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

// Load возвращает сохранённый черновик или ErrNotFound.
func (s *PostgresStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte

	err := s.withRetry(ctx, func() error {
		return s.pool.QueryRow(ctx,
			`SELECT payload FROM checkout_drafts WHERE key = $1`,
			key,
		).Scan(&payload)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select draft: %w", err)
	}

	return payload, nil
}

// Save записывает черновик, перезаписывая предыдущую версию по тому же ключу.
func (s *PostgresStorage) Save(ctx context.Context, key string, payload []byte) error {
	err := s.withRetry(ctx, func() error {
		_, execErr := s.pool.Exec(ctx,
			`INSERT INTO checkout_drafts (key, payload, updated_at) VALUES ($1, $2, now())
			 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
			key, payload,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}

	return nil
}

// Delete удаляет черновик. Отсутствие строки не считается ошибкой.
func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	err := s.withRetry(ctx, func() error {
		_, execErr := s.pool.Exec(ctx,
			`DELETE FROM checkout_drafts WHERE key = $1`,
			key,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	return nil
}
