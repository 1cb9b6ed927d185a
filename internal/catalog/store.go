package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Store persists the coin and currency catalog in PostgreSQL. The catalog is
// read-mostly reference data refreshed by the sync job; quote resolution
// never blocks on it.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// StoreConfig holds PostgreSQL configuration.
type StoreConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewStore opens a PostgreSQL-backed catalog store and verifies connectivity.
func NewStore(cfg *StoreConfig) (*Store, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("catalog-store-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &Store{db: db, logger: cfg.Logger}, nil
}

// NewStoreWithDB wraps an existing connection, used by tests with sqlmock.
func NewStoreWithDB(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// UpsertCoin inserts or reactivates a coin keyed by its provider id.
func (s *Store) UpsertCoin(ctx context.Context, baseID, base string) error {
	query := `
		INSERT INTO coins (base_id, base, active)
		VALUES ($1, $2, true)
		ON CONFLICT (base_id)
		DO UPDATE SET base = EXCLUDED.base, active = true
	`

	_, err := s.db.ExecContext(ctx, query, baseID, base)
	if err != nil {
		return fmt.Errorf("upsert coin %q: %w", baseID, err)
	}

	return nil
}

// DeactivateCoinsExcept marks coins absent from the latest provider listing
// as inactive. Manually-added coins are exempt.
func (s *Store) DeactivateCoinsExcept(ctx context.Context, baseIDs []string) (int64, error) {
	query := `
		UPDATE coins
		SET active = false
		WHERE added_manually = false
		  AND NOT (base_id = ANY($1))
	`

	res, err := s.db.ExecContext(ctx, query, pq.Array(baseIDs))
	if err != nil {
		return 0, fmt.Errorf("deactivate coins: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}

	return affected, nil
}

// UpsertCurrency inserts or reactivates a quote currency by name.
func (s *Store) UpsertCurrency(ctx context.Context, name string) error {
	query := `
		INSERT INTO currencies (name, active)
		VALUES ($1, true)
		ON CONFLICT (name)
		DO UPDATE SET active = true
	`

	_, err := s.db.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("upsert currency %q: %w", name, err)
	}

	return nil
}

// DeactivateCurrenciesExcept marks currencies absent from the latest
// supported set as inactive.
func (s *Store) DeactivateCurrenciesExcept(ctx context.Context, names []string) (int64, error) {
	query := `
		UPDATE currencies
		SET active = false
		WHERE NOT (name = ANY($1))
	`

	res, err := s.db.ExecContext(ctx, query, pq.Array(names))
	if err != nil {
		return 0, fmt.Errorf("deactivate currencies: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}

	return affected, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("closing-catalog-store")
	return s.db.Close()
}
