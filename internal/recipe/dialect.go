package recipe

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"modernc.org/sqlite"
)

// Dialect holds the SQL that differs between the supported databases. Every
// string here is a fixed constant; user input only ever travels as bound args.
type Dialect struct {
	// Name is the database/sql driver name.
	Name string
	// ILike is the case-insensitive match operator.
	ILike string
	// CaloriesExpr extracts the numeric calories value from the nutrients document.
	CaloriesExpr string
	// JSONParam is the placeholder used when inserting the nutrients document.
	JSONParam string
	Schema    []string
	Truncate  []string
}

// Postgres is the production dialect.
var Postgres = Dialect{
	Name:         "postgres",
	ILike:        "ILIKE",
	CaloriesExpr: `CAST(REGEXP_REPLACE(nutrients->>'calories', '[^0-9.]', '', 'g') AS FLOAT)`,
	JSONParam:    "?::jsonb",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS recipes (
			id SERIAL PRIMARY KEY,
			cuisine TEXT,
			title TEXT,
			rating DOUBLE PRECISION,
			prep_time DOUBLE PRECISION,
			cook_time DOUBLE PRECISION,
			total_time DOUBLE PRECISION,
			description TEXT,
			nutrients JSONB,
			serves TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_rating ON recipes (rating DESC NULLS LAST, id)`,
	},
	Truncate: []string{
		`TRUNCATE TABLE recipes RESTART IDENTITY CASCADE`,
	},
}

// SQLite is the embedded dialect used for local runs and tests. LIKE is
// case-insensitive for ASCII only, and an empty calories string compares as
// NULL instead of failing the cast.
var SQLite = Dialect{
	Name:         "sqlite",
	ILike:        "LIKE",
	CaloriesExpr: `CAST(NULLIF(regexp_replace(json_extract(nutrients, '$.calories'), '[^0-9.]', ''), '') AS REAL)`,
	JSONParam:    "?",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS recipes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cuisine TEXT,
			title TEXT,
			rating REAL,
			prep_time REAL,
			cook_time REAL,
			total_time REAL,
			description TEXT,
			nutrients TEXT,
			serves TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_rating ON recipes (rating, id)`,
	},
	Truncate: []string{
		`DELETE FROM recipes`,
		`DELETE FROM sqlite_sequence WHERE name = 'recipes'`,
	},
}

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		registerSQLiteFuncs()
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driverName)
	}
}

var sqliteFuncsOnce sync.Once

// registerSQLiteFuncs installs regexp_replace(src, pattern, repl), which
// SQLite lacks. It must run before the first connection is opened.
func registerSQLiteFuncs() {
	sqliteFuncsOnce.Do(func() {
		sqlx.BindDriver(SQLite.Name, sqlx.QUESTION)

		var mu sync.Mutex
		compiled := map[string]*regexp.Regexp{}
		err := sqlite.RegisterDeterministicScalarFunction("regexp_replace", 3,
			func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				src, ok := args[0].(string)
				if !ok {
					return nil, nil
				}
				pattern, _ := args[1].(string)
				repl, _ := args[2].(string)

				mu.Lock()
				re, ok := compiled[pattern]
				if !ok {
					var err error
					re, err = regexp.Compile(pattern)
					if err != nil {
						mu.Unlock()
						return nil, err
					}
					compiled[pattern] = re
				}
				mu.Unlock()
				return re.ReplaceAllString(src, repl), nil
			})
		if err != nil {
			panic(fmt.Errorf("failed to register sqlite regexp_replace: %w", err))
		}
	})
}
