package recipe

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for recipe data operations.
type Store interface {
	CountRecipes(ctx context.Context) (int, error)
	ListRecipes(ctx context.Context, limit, offset int) ([]*Recipe, error)
	SearchRecipes(ctx context.Context, filters Filters) ([]*Recipe, error)
	ReplaceRecipes(ctx context.Context, recipes []*Recipe, batchSize int, progress func(done, total int)) error
	Close() error
}

// SQLStore implements Store on top of a relational database.
type SQLStore struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewStore connects to the database and creates the recipes table if it does
// not exist yet.
func NewStore(driverName, dataSourceName string) (*SQLStore, error) {
	dialect, err := DialectFor(driverName)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(dialect.Name, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if dialect.Name == SQLite.Name {
		// A second connection to an in-memory database would see an empty one.
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range dialect.Schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create recipes schema: %w", err)
		}
	}

	return &SQLStore{db: db, dialect: dialect}, nil
}

// NewPostgresStore creates a new SQLStore backed by PostgreSQL.
func NewPostgresStore(dataSourceName string) (*SQLStore, error) {
	return NewStore(Postgres.Name, dataSourceName)
}

// NewSQLiteStore creates a new SQLStore backed by an embedded SQLite file, or
// an in-memory database for ":memory:".
func NewSQLiteStore(path string) (*SQLStore, error) {
	return NewStore(SQLite.Name, path)
}

// SetMaxOpenConns caps the connection pool. SQLite stores stay at one.
func (s *SQLStore) SetMaxOpenConns(n int) {
	if s.dialect.Name == SQLite.Name || n <= 0 {
		return
	}
	s.db.SetMaxOpenConns(n)
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// CountRecipes returns the number of rows in the catalog.
func (s *SQLStore) CountRecipes(ctx context.Context) (int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, BuildCount()); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return total, nil
}

// ListRecipes returns one page of recipes, best rated first.
func (s *SQLStore) ListRecipes(ctx context.Context, limit, offset int) ([]*Recipe, error) {
	recipes := []*Recipe{}
	if err := s.db.SelectContext(ctx, &recipes, s.db.Rebind(BuildList()), limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// SearchRecipes returns every recipe matching filters, in listing order.
func (s *SQLStore) SearchRecipes(ctx context.Context, filters Filters) ([]*Recipe, error) {
	query, args := BuildSearch(s.dialect, filters)

	recipes := []*Recipe{}
	if err := s.db.SelectContext(ctx, &recipes, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return recipes, nil
}

// ReplaceRecipes clears the catalog and inserts recipes in batches of
// batchSize inside a single transaction. progress, when set, is called after
// every batch with the running total.
func (s *SQLStore) ReplaceRecipes(ctx context.Context, recipes []*Recipe, batchSize int, progress func(done, total int)) error {
	if batchSize < 1 {
		return fmt.Errorf("invalid batch size %d", batchSize)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range s.dialect.Truncate {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear recipes: %w", err)
		}
	}

	for start := 0; start < len(recipes); start += batchSize {
		end := min(start+batchSize, len(recipes))
		batch := recipes[start:end]

		query := tx.Rebind(BuildInsert(s.dialect, len(batch)))
		if _, err := tx.ExecContext(ctx, query, insertArgs(batch)...); err != nil {
			return fmt.Errorf("failed to insert recipes %d-%d: %w", start+1, end, err)
		}
		if progress != nil {
			progress(end, len(recipes))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipes: %w", err)
	}
	return nil
}
