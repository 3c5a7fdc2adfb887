package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipecatalog/internal/recipe"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// RecipeStore defines the read operations the API needs.
type RecipeStore interface {
	CountRecipes(ctx context.Context) (int, error)
	ListRecipes(ctx context.Context, limit, offset int) ([]*recipe.Recipe, error)
	SearchRecipes(ctx context.Context, filters recipe.Filters) ([]*recipe.Recipe, error)
}

// Handler handles HTTP requests.
type Handler struct {
	RecipeStore  RecipeStore
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(recipeStore RecipeStore, queryTimeout time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{RecipeStore: recipeStore, QueryTimeout: queryTimeout, Logger: logger}
}

// RegisterRoutes mounts the recipe endpoints on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/recipes", h.GetRecipes)
	r.GET("/recipes/search", h.SearchRecipes)
}

// ListResponse is the body of GET /recipes.
type ListResponse struct {
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
	Data  []*recipe.Recipe `json:"data"`
}

// SearchResponse is the body of GET /recipes/search.
type SearchResponse struct {
	Data []*recipe.Recipe `json:"data"`
}

// GetRecipes handles requests for one page of recipes, best rated first.
func (h *Handler) GetRecipes(c *gin.Context) {
	page, okPage := positiveQuery(c, "page", defaultPage)
	limit, okLimit := positiveQuery(c, "limit", defaultLimit)
	if !okPage || !okLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Page and limit must be positive integers"})
		return
	}
	if page-1 > math.MaxInt/limit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Page is out of range for the given limit"})
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	total, err := h.RecipeStore.CountRecipes(ctx)
	if err != nil {
		h.storeError(c, "Error fetching recipes", err)
		return
	}

	recipes, err := h.RecipeStore.ListRecipes(ctx, limit, (page-1)*limit)
	if err != nil {
		h.storeError(c, "Error fetching recipes", err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Page:  page,
		Limit: limit,
		Total: total,
		Data:  withNutrients(recipes),
	})
}

// SearchRecipes handles filtered searches. Every filter is optional.
func (h *Handler) SearchRecipes(c *gin.Context) {
	filters := recipe.Filters{
		Calories:  c.Query("calories"),
		Title:     c.Query("title"),
		Cuisine:   c.Query("cuisine"),
		TotalTime: c.Query("total_time"),
		Rating:    c.Query("rating"),
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	recipes, err := h.RecipeStore.SearchRecipes(ctx, filters)
	if err != nil {
		h.storeError(c, "Error searching recipes", err)
		return
	}

	c.JSON(http.StatusOK, SearchResponse{Data: withNutrients(recipes)})
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Recipes API is running"})
}

func (h *Handler) queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.QueryTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.QueryTimeout)
}

func (h *Handler) storeError(c *gin.Context, msg string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		msg += ": query timed out after " + h.QueryTimeout.String()
	}
	h.Logger.Error(msg, zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// leadingInt matches an optionally signed integer prefix such as "2" in "2.5".
var leadingInt = regexp.MustCompile(`^\s*[+-]?\d+`)

// positiveQuery reads a pagination parameter. A value without a leading
// integer yields def; trailing characters after the integer are ignored.
// Zero, negative and out-of-range integers report false.
func positiveQuery(c *gin.Context, key string, def int) (int, bool) {
	m := leadingInt.FindString(c.Query(key))
	if m == "" {
		return def, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// withNutrients makes sure every row serializes nutrients as an object.
func withNutrients(recipes []*recipe.Recipe) []*recipe.Recipe {
	out := make([]*recipe.Recipe, len(recipes))
	for i, r := range recipes {
		cp := *r
		cp.Nutrients = r.Nutrients.OrEmpty()
		out[i] = &cp
	}
	return out
}
