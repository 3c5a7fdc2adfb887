package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const selectPrefix = "SELECT id, cuisine, title, rating, prep_time, cook_time, total_time, description, nutrients, serves FROM recipes WHERE 1=1"

func TestBuildSearch_NoFilters(t *testing.T) {
	query, args := BuildSearch(Postgres, Filters{})
	assert.Equal(t, selectPrefix+" ORDER BY rating DESC NULLS LAST, id ASC", query)
	assert.Empty(t, args)
}

func TestBuildSearch_AllFilters(t *testing.T) {
	query, args := BuildSearch(Postgres, Filters{
		Calories:  "<=400",
		Title:     "pie",
		Cuisine:   "Southern Recipes",
		TotalTime: "<60",
		Rating:    ">=4.5",
	})

	want := selectPrefix +
		" AND CAST(REGEXP_REPLACE(nutrients->>'calories', '[^0-9.]', '', 'g') AS FLOAT) <= ?" +
		" AND title ILIKE ?" +
		" AND cuisine ILIKE ?" +
		" AND total_time < ?" +
		" AND rating >= ?" +
		" ORDER BY rating DESC NULLS LAST, id ASC"
	assert.Equal(t, want, query)
	assert.Equal(t, []any{400.0, "%pie%", "Southern Recipes", 60.0, 4.5}, args)
}

func TestBuildSearch_SkipsUnusableNumericFilters(t *testing.T) {
	for _, value := range []string{"<=abc", "chicken", ">=", "   "} {
		query, args := BuildSearch(Postgres, Filters{Calories: value, TotalTime: value, Rating: value})
		assert.Equal(t, selectPrefix+" ORDER BY rating DESC NULLS LAST, id ASC", query, "value %q", value)
		assert.Empty(t, args, "value %q", value)
	}
}

func TestBuildSearch_SkipsBlankTextFilters(t *testing.T) {
	for _, value := range []string{"  ", "\t", " \n "} {
		query, args := BuildSearch(Postgres, Filters{Title: value, Cuisine: value})
		assert.Equal(t, selectPrefix+" ORDER BY rating DESC NULLS LAST, id ASC", query, "value %q", value)
		assert.Empty(t, args, "value %q", value)
	}

	// Non-blank values are bound untrimmed.
	_, args := BuildSearch(Postgres, Filters{Title: " pie "})
	assert.Equal(t, []any{"% pie %"}, args)
}

func TestBuildSearch_BareNumberIsEquality(t *testing.T) {
	query, args := BuildSearch(Postgres, Filters{Rating: "4"})
	assert.Contains(t, query, " AND rating = ?")
	assert.Equal(t, []any{4.0}, args)
}

func TestBuildSearch_OperandsNeverInQueryText(t *testing.T) {
	hostile := "'; DROP TABLE recipes; --"
	query, args := BuildSearch(Postgres, Filters{
		Title:     hostile,
		Cuisine:   hostile,
		Calories:  "<=1 OR 1=1",
		TotalTime: "=5; DELETE FROM recipes",
	})

	assert.NotContains(t, query, "DROP")
	assert.NotContains(t, query, "DELETE")
	assert.NotContains(t, query, "OR 1=1")
	assert.Equal(t, []any{1.0, "%" + hostile + "%", hostile, 5.0}, args)
	assert.Equal(t, len(args), strings.Count(query, "?"))
}

func TestBuildSearch_SQLiteDialect(t *testing.T) {
	query, args := BuildSearch(SQLite, Filters{Calories: ">100", Cuisine: "italian"})
	assert.Contains(t, query, "json_extract(nutrients, '$.calories')")
	assert.Contains(t, query, ") AS REAL) > ?")
	assert.Contains(t, query, " AND cuisine LIKE ?")
	assert.Equal(t, []any{100.0, "italian"}, args)
}

func TestBuildList(t *testing.T) {
	assert.Equal(t,
		"SELECT id, cuisine, title, rating, prep_time, cook_time, total_time, description, nutrients, serves FROM recipes ORDER BY rating DESC NULLS LAST, id ASC LIMIT ? OFFSET ?",
		BuildList())
	assert.Equal(t, "SELECT COUNT(*) FROM recipes", BuildCount())
}

func TestBuildInsert(t *testing.T) {
	pg := BuildInsert(Postgres, 2)
	assert.Equal(t,
		"INSERT INTO recipes (cuisine, title, rating, prep_time, cook_time, total_time, description, nutrients, serves) VALUES "+
			"(?, ?, ?, ?, ?, ?, ?, ?::jsonb, ?), (?, ?, ?, ?, ?, ?, ?, ?::jsonb, ?)",
		pg)

	lite := BuildInsert(SQLite, 1)
	assert.True(t, strings.HasSuffix(lite, "VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"))

	args := insertArgs([]*Recipe{{Title: strPtr("a")}, {Title: strPtr("b")}})
	assert.Len(t, args, 18)
	assert.Equal(t, strings.Count(lite, "?")*2, len(args))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	assert.NoError(t, err)
	assert.Equal(t, "ILIKE", d.ILike)

	d, err = DialectFor("sqlite")
	assert.NoError(t, err)
	assert.Equal(t, "LIKE", d.ILike)

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}
