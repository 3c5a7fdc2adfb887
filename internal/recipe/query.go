package recipe

import "strings"

const recipeColumns = "id, cuisine, title, rating, prep_time, cook_time, total_time, description, nutrients, serves"

// orderClause is shared by list and search so both return the same order.
const orderClause = " ORDER BY rating DESC NULLS LAST, id ASC"

// Filters are the raw search parameters. Empty or whitespace-only fields
// impose no constraint.
type Filters struct {
	Calories  string `form:"calories"`
	Title     string `form:"title"`
	Cuisine   string `form:"cuisine"`
	TotalTime string `form:"total_time"`
	Rating    string `form:"rating"`
}

// sqlOperator maps a parsed operator onto its SQL spelling.
func sqlOperator(op Operator) (string, bool) {
	switch op {
	case OpLessOrEqual, OpGreaterOrEqual, OpLess, OpGreater, OpEqual:
		return string(op), true
	default:
		return "", false
	}
}

// comparison builds "<expr> <op> ?" for a numeric filter expression, or
// reports false when the expression should be skipped.
func comparison(expr, value string) (string, float64, bool) {
	if value == "" {
		return "", 0, false
	}
	f := ParseFilter(value)
	n, ok := f.Number()
	if !ok {
		return "", 0, false
	}
	op, ok := sqlOperator(f.Op)
	if !ok {
		return "", 0, false
	}
	return expr + " " + op + " ?", n, true
}

// BuildSearch composes the search query for f. Placeholders are written as
// '?' and must be rebound for the target driver.
func BuildSearch(d Dialect, f Filters) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + recipeColumns + " FROM recipes WHERE 1=1")

	if cond, n, ok := comparison(d.CaloriesExpr, f.Calories); ok {
		b.WriteString(" AND " + cond)
		args = append(args, n)
	}
	if strings.TrimSpace(f.Title) != "" {
		b.WriteString(" AND title " + d.ILike + " ?")
		args = append(args, "%"+f.Title+"%")
	}
	if strings.TrimSpace(f.Cuisine) != "" {
		b.WriteString(" AND cuisine " + d.ILike + " ?")
		args = append(args, f.Cuisine)
	}
	if cond, n, ok := comparison("total_time", f.TotalTime); ok {
		b.WriteString(" AND " + cond)
		args = append(args, n)
	}
	if cond, n, ok := comparison("rating", f.Rating); ok {
		b.WriteString(" AND " + cond)
		args = append(args, n)
	}

	b.WriteString(orderClause)
	return b.String(), args
}

// BuildList returns the paginated listing query; its args are limit, offset.
func BuildList() string {
	return "SELECT " + recipeColumns + " FROM recipes" + orderClause + " LIMIT ? OFFSET ?"
}

// BuildCount returns the total row count query.
func BuildCount() string {
	return "SELECT COUNT(*) FROM recipes"
}

// BuildInsert returns a multi-row insert for n recipes with insertArgs layout.
func BuildInsert(d Dialect, n int) string {
	row := "(?, ?, ?, ?, ?, ?, ?, " + d.JSONParam + ", ?)"
	rows := make([]string, n)
	for i := range rows {
		rows[i] = row
	}
	return "INSERT INTO recipes (cuisine, title, rating, prep_time, cook_time, total_time, description, nutrients, serves) VALUES " +
		strings.Join(rows, ", ")
}

// insertArgs flattens recipes in the column order of BuildInsert.
func insertArgs(recipes []*Recipe) []any {
	args := make([]any, 0, len(recipes)*9)
	for _, r := range recipes {
		args = append(args,
			r.Cuisine,
			r.Title,
			r.Rating,
			r.PrepTime,
			r.CookTime,
			r.TotalTime,
			r.Description,
			r.Nutrients,
			r.Serves,
		)
	}
	return args
}
