package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"levelup/pkg/logger"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
	DriverMemory   = "memory"

	templateCacheSize = 512
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type Repository struct {
	db        *sqlx.DB
	driver    string
	sb        squirrel.StatementBuilderType
	templates *lru.Cache
	// evictions counts template cache evictions; a read only fills the
	// cache when no eviction happened while it queried.
	evictions atomic.Uint64
}

type Config struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	Host        string `json:"host"`
	Port        string `json:"port"`
	User        string `json:"user"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	AutoMigrate bool   `json:"autoMigrate"`
}

func New(cfg Config) (*Repository, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		if cfg.Path != "" && cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err = sqlx.Connect(DriverSQLite, cfg.GetSQLiteDSN())
		if err == nil {
			// One connection: a single local writer, and ":memory:" databases
			// are per connection.
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		db, err = sqlx.Connect(DriverPostgres, cfg.GetDatabaseURL())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r, err := newRepository(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := r.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Logger().Info("Connected to database successfully", zap.String("driver", driver))

	return r, nil
}

func newRepository(db *sqlx.DB, driver string) (*Repository, error) {
	cache, err := lru.New(templateCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create template cache")
	}

	var placeholder squirrel.PlaceholderFormat = squirrel.Question
	if driver == DriverPostgres {
		placeholder = squirrel.Dollar
	}

	return &Repository{
		db:        db,
		driver:    driver,
		sb:        squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		templates: cache,
	}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type txKey struct{}

type txState struct {
	tx *sqlx.Tx
	// evict holds template ids to drop from the cache once the transaction
	// commits.
	evict []uuid.UUID
}

// Transaction runs t inside a database transaction carried by the context.
// Repository calls made with that context join the transaction; nested calls
// reuse the outer one.
func (r *Repository) Transaction(ctx context.Context, t func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return t(ctx)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	state := &txState{tx: tx}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	err = t(context.WithValue(ctx, txKey{}, state))
	if err != nil {
		txErr := tx.Rollback()
		if txErr != nil {
			return errors.Wrapf(err, "rollback error: %v", txErr)
		}
		return err
	}

	err = tx.Commit()
	for _, id := range state.evict {
		r.evictTemplate(id)
	}
	return err
}

func (r *Repository) ext(ctx context.Context) sqlx.ExtContext {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		return state.tx
	}
	return r.db
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}

func (r *Repository) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, r.ext(ctx), dest, query, args...)
}

func (r *Repository) selectRows(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, r.ext(ctx), dest, query, args...)
}

func (r *Repository) exec(ctx context.Context, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}

	result, err := r.ext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

func (c *Config) GetSQLiteDSN() string {
	path := c.Path
	if path == "" {
		path = ":memory:"
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
}

// Optional values are bound as untyped nil so every driver writes NULL.
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullInt(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}
