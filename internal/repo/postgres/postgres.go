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
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/repo"
)

var _ repo.ServiceStore = (*Store)(nil)
var _ repo.UserStore = (*Store)(nil)
var _ repo.Pinger = (*Store)(nil)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 5
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	s.log.Info("postgres_schema_ready")
	return nil
}

// ---- ServiceStore ----

const serviceColumns = `id, service_name, healthcheck_url, healthcheck_duration_seconds, created_at, updated_at`

func scanService(row pgx.Row) (domain.Service, error) {
	var svc domain.Service
	err := row.Scan(&svc.ID, &svc.Name, &svc.URL, &svc.IntervalSeconds, &svc.CreatedAt, &svc.UpdatedAt)
	return svc, err
}

func (s *Store) List(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+serviceColumns+`
		   FROM services
		  ORDER BY service_name, id`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id domain.ServiceID) (domain.Service, error) {
	svc, err := scanService(s.pool.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, int64(id)))
	if err != nil {
		return domain.Service{}, notFound(fmt.Sprintf("service %d", id), err)
	}
	return svc, nil
}

func (s *Store) Create(ctx context.Context, svc *domain.Service) error {
	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO services (service_name, healthcheck_url, healthcheck_duration_seconds, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id`,
		svc.Name, svc.URL, svc.IntervalSeconds, now,
	).Scan(&svc.ID)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	svc.CreatedAt, svc.UpdatedAt = now, now
	return nil
}

func (s *Store) Update(ctx context.Context, id domain.ServiceID, p domain.ServicePatch) (domain.Service, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Name != nil {
		add("service_name", *p.Name)
	}
	if p.URL != nil {
		add("healthcheck_url", *p.URL)
	}
	if p.IntervalSeconds != nil {
		add("healthcheck_duration_seconds", *p.IntervalSeconds)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, int64(id))

	q := fmt.Sprintf(`UPDATE services SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), serviceColumns)
	svc, err := scanService(s.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return domain.Service{}, notFound(fmt.Sprintf("update service %d", id), err)
	}
	return svc, nil
}

func (s *Store) Delete(ctx context.Context, id domain.ServiceID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete service %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete service %d: %w", id, repo.ErrNotFound)
	}
	return nil
}

// ---- UserStore ----

func (s *Store) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return domain.User{}, notFound(fmt.Sprintf("user %q", username), err)
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return domain.User{}, notFound(fmt.Sprintf("user %d", id), err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		u.Username, u.PasswordHash, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("user %q: %w", u.Username, repo.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, repo.ErrNotFound)
	}
	return nil
}

func notFound(what string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, repo.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
