package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations
var migrationsFS embed.FS

type Credentials struct {
	Driver string

	// sqlite
	Path string

	// postgres
	Host     string
	Port     int
	User     string
	Password string
	DBName   string

	// MigrationsDirPath points at a directory holding one sub-directory per
	// driver. Empty means the migrations compiled into the binary.
	MigrationsDirPath string
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository struct {
	db     *sql.DB
	q      queryer
	driver string
	inTx   bool
}

func NewRepository(cred *Credentials) (*Repository, error) {
	driver := cred.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var dsn string
	switch driver {
	case DriverSQLite:
		dsn = cred.Path
		if dsn == "" {
			dsn = ":memory:"
		}
	case DriverPostgres:
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cred.Host,
			cred.Port,
			cred.User,
			cred.Password,
			cred.DBName)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	if driver == DriverSQLite {
		// one connection keeps :memory: databases alive and serialises writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(100)
		db.SetMaxIdleConns(10)
	}
	log.Printf("connected to %s", driver)
	return &Repository{db: db, q: db, driver: driver}, nil
}

func (r *Repository) Driver() string {
	return r.driver
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	var (
		instance database.Driver
		err      error
	)
	switch r.driver {
	case DriverPostgres:
		instance, err = migratepg.WithInstance(r.db, &migratepg.Config{})
	default:
		instance, err = migratesqlite.WithInstance(r.db, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	var m *migrate.Migrate
	if cred.MigrationsDirPath != "" {
		m, err = migrate.NewWithDatabaseInstance(
			fmt.Sprintf("file://%s/%s", cred.MigrationsDirPath, r.driver),
			r.driver,
			instance,
		)
	} else {
		src, errSrc := iofs.New(migrationsFS, "migrations/"+r.driver)
		if errSrc != nil {
			return fmt.Errorf("could not open embedded migrations: %w", errSrc)
		}
		m, err = migrate.NewWithInstance("iofs", src, r.driver, instance)
	}
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// WithTx runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Calls
// made on a repository that is already inside a transaction join it.
func (r *Repository) WithTx(ctx context.Context, fn func(Store) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &Repository{db: r.db, q: tx, driver: r.driver, inTx: true}
	if errFn := fn(txRepo); errFn != nil {
		if errRb := tx.Rollback(); errRb != nil {
			log.Printf("rollback failed: %v", errRb)
		}
		return errFn
	}

	if errCommit := tx.Commit(); errCommit != nil {
		return fmt.Errorf("commit transaction: %w", errCommit)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
