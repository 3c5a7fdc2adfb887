package recipe

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Recipe is one imported catalog row. Pointer fields are nil when the source
// value was absent or unusable.
type Recipe struct {
	ID          int64     `json:"id" db:"id"`
	Cuisine     *string   `json:"cuisine" db:"cuisine"`
	Title       *string   `json:"title" db:"title"`
	Rating      *float64  `json:"rating" db:"rating"`
	PrepTime    *float64  `json:"prep_time" db:"prep_time"`
	CookTime    *float64  `json:"cook_time" db:"cook_time"`
	TotalTime   *float64  `json:"total_time" db:"total_time"`
	Description *string   `json:"description" db:"description"`
	Nutrients   Nutrients `json:"nutrients" db:"nutrients"`
	Serves      *string   `json:"serves" db:"serves"`
}

// Raw converts the recipe back into the loosely typed form accepted by Sanitize.
func (r Recipe) Raw() RawRecipe {
	raw := RawRecipe{}
	putString := func(key string, v *string) {
		if v != nil {
			raw[key] = *v
		}
	}
	putNumber := func(key string, v *float64) {
		if v != nil {
			raw[key] = *v
		}
	}
	putString("cuisine", r.Cuisine)
	putString("title", r.Title)
	putNumber("rating", r.Rating)
	putNumber("prep_time", r.PrepTime)
	putNumber("cook_time", r.CookTime)
	putNumber("total_time", r.TotalTime)
	putString("description", r.Description)
	putString("serves", r.Serves)
	if r.Nutrients != nil {
		m := make(map[string]any, len(r.Nutrients))
		for k, v := range r.Nutrients {
			m[string(k)] = v
		}
		raw["nutrients"] = m
	}
	return raw
}

// NutrientKey names an entry of the nutrients document.
type NutrientKey string

// Known nutrient keys. Imports may carry others; they are kept as-is.
const (
	Calories              NutrientKey = "calories"
	CarbohydrateContent   NutrientKey = "carbohydrateContent"
	CholesterolContent    NutrientKey = "cholesterolContent"
	FiberContent          NutrientKey = "fiberContent"
	ProteinContent        NutrientKey = "proteinContent"
	SaturatedFatContent   NutrientKey = "saturatedFatContent"
	SodiumContent         NutrientKey = "sodiumContent"
	SugarContent          NutrientKey = "sugarContent"
	FatContent            NutrientKey = "fatContent"
	UnsaturatedFatContent NutrientKey = "unsaturatedFatContent"
)

// Nutrients maps nutrient names to display strings such as "389 kcal".
// It is stored as a JSON document column.
type Nutrients map[NutrientKey]string

// Get returns the display string for key.
func (n Nutrients) Get(key NutrientKey) (string, bool) {
	v, ok := n[key]
	return v, ok
}

// Calories extracts the numeric calories value the same way the search
// predicate does: every character other than a digit or '.' is dropped.
func (n Nutrients) Calories() (float64, bool) {
	v, ok := n.Get(Calories)
	if !ok {
		return 0, false
	}
	return stripToNumber(v)
}

// OrEmpty returns n, or an empty non-nil map when n is nil.
func (n Nutrients) OrEmpty() Nutrients {
	if n == nil {
		return Nutrients{}
	}
	return n
}

// Value implements driver.Valuer. A nil map is stored as SQL NULL.
func (n Nutrients) Value() (driver.Value, error) {
	if n == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[NutrientKey]string(n))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nutrients: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSONB (Postgres) and TEXT (SQLite) columns.
func (n *Nutrients) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*n = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported nutrients column type %T", src)
	}

	var m map[NutrientKey]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to unmarshal nutrients: %w", err)
	}
	*n = m
	return nil
}
