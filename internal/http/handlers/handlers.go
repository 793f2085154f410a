// Package handlers exposes the REST endpoints of the discount catalog.
//
// Handlers are transport-thin: they parse input, call application services,
// and translate results into HTTP responses. Services are consumed through
// the interfaces below so tests can substitute stubs.
package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
	"github.com/tbourn/go-benefits-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// CatalogService is the CRUD contract shared by categories, companies and
// locations.
type CatalogService[T any] interface {
	List(ctx context.Context, page, pageSize int, order string) ([]T, int64, error)
	Get(ctx context.Context, id string) (*T, error)
	// Create assigns the id of v.
	Create(ctx context.Context, v *T) error
	// Update overwrites the record named by v's id and returns the stored row.
	Update(ctx context.Context, v *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

type (
	CategoryService = CatalogService[domain.Category]
	CompanyService  = CatalogService[domain.Company]
	LocationService = CatalogService[domain.Location]
)

// DiscountService manages discounts.
type DiscountService interface {
	List(ctx context.Context, f repo.DiscountFilter, page, pageSize int, order string) ([]domain.Discount, int64, error)
	// Stats returns the count and latest update time of discounts matching f.
	Stats(ctx context.Context, f repo.DiscountFilter) (int64, *time.Time, error)
	Get(ctx context.Context, id string) (*domain.Discount, error)
	Create(ctx context.Context, in services.DiscountInput) (*domain.Discount, error)
	Update(ctx context.Context, id string, in services.DiscountInput) (*domain.Discount, error)
	Delete(ctx context.Context, id string) error
}

// ImportService runs CSV uploads and serves stored reports and exports.
type ImportService interface {
	Import(ctx context.Context, req services.ImportRequest) (*services.ImportResult, error)
	GetRun(ctx context.Context, id string) (*services.ImportResult, error)
	Export(ctx context.Context, w io.Writer, delimiter string) error
}

// UserService manages accounts and lists roles.
type UserService interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	List(ctx context.Context, page, pageSize int, order string) ([]domain.User, int64, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in services.UserInput) (*domain.User, error)
	Update(ctx context.Context, id string, in services.UserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers. A nil service is only
// safe when none of its routes are registered.
type Services struct {
	Categories CategoryService
	Companies  CompanyService
	Locations  LocationService
	Discounts  DiscountService
	Imports    ImportService
	Users      UserService
}

// Handlers groups every HTTP endpoint of the API.
type Handlers struct {
	svc Services
}

// New constructs and returns a Handlers instance bound to the given services.
func New(svc Services) *Handlers {
	return &Handlers{svc: svc}
}

// pathID returns the ":id" path param when it is a UUID. Otherwise it
// answers 400 and returns false.
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a UUID")
		return "", false
	}
	return id, true
}
