package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
	"github.com/tbourn/go-benefits-backend/internal/services"
)

const testID = "141add05-4415-4938-b5a1-17e0d3171aff"

// ---------- stubs ----------

type stubCatalog[T any] struct {
	list   func(context.Context, int, int, string) ([]T, int64, error)
	get    func(context.Context, string) (*T, error)
	create func(context.Context, *T) error
	update func(context.Context, *T) (*T, error)
	del    func(context.Context, string) error
}

func (s stubCatalog[T]) List(ctx context.Context, p, ps int, order string) ([]T, int64, error) {
	if s.list != nil {
		return s.list(ctx, p, ps, order)
	}
	return nil, 0, nil
}

func (s stubCatalog[T]) Get(ctx context.Context, id string) (*T, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return new(T), nil
}

func (s stubCatalog[T]) Create(ctx context.Context, v *T) error {
	if s.create != nil {
		return s.create(ctx, v)
	}
	return nil
}

func (s stubCatalog[T]) Update(ctx context.Context, v *T) (*T, error) {
	if s.update != nil {
		return s.update(ctx, v)
	}
	return v, nil
}

func (s stubCatalog[T]) Delete(ctx context.Context, id string) error {
	if s.del != nil {
		return s.del(ctx, id)
	}
	return nil
}

type stubDiscountSvc struct {
	list   func(context.Context, repo.DiscountFilter, int, int, string) ([]domain.Discount, int64, error)
	stats  func(context.Context, repo.DiscountFilter) (int64, *time.Time, error)
	get    func(context.Context, string) (*domain.Discount, error)
	create func(context.Context, services.DiscountInput) (*domain.Discount, error)
	update func(context.Context, string, services.DiscountInput) (*domain.Discount, error)
	del    func(context.Context, string) error
}

func (s stubDiscountSvc) List(ctx context.Context, f repo.DiscountFilter, p, ps int, order string) ([]domain.Discount, int64, error) {
	if s.list != nil {
		return s.list(ctx, f, p, ps, order)
	}
	return nil, 0, nil
}

func (s stubDiscountSvc) Stats(ctx context.Context, f repo.DiscountFilter) (int64, *time.Time, error) {
	if s.stats != nil {
		return s.stats(ctx, f)
	}
	return 0, nil, nil
}

func (s stubDiscountSvc) Get(ctx context.Context, id string) (*domain.Discount, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Discount{ID: id}, nil
}

func (s stubDiscountSvc) Create(ctx context.Context, in services.DiscountInput) (*domain.Discount, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	return &domain.Discount{ID: testID}, nil
}

func (s stubDiscountSvc) Update(ctx context.Context, id string, in services.DiscountInput) (*domain.Discount, error) {
	if s.update != nil {
		return s.update(ctx, id, in)
	}
	return &domain.Discount{ID: id}, nil
}

func (s stubDiscountSvc) Delete(ctx context.Context, id string) error {
	if s.del != nil {
		return s.del(ctx, id)
	}
	return nil
}

type stubImportSvc struct {
	imp    func(context.Context, services.ImportRequest) (*services.ImportResult, error)
	getRun func(context.Context, string) (*services.ImportResult, error)
	export func(context.Context, io.Writer, string) error
}

func (s stubImportSvc) Import(ctx context.Context, req services.ImportRequest) (*services.ImportResult, error) {
	if s.imp != nil {
		return s.imp(ctx, req)
	}
	return &services.ImportResult{Run: &domain.ImportRun{ID: testID}}, nil
}

func (s stubImportSvc) GetRun(ctx context.Context, id string) (*services.ImportResult, error) {
	if s.getRun != nil {
		return s.getRun(ctx, id)
	}
	return &services.ImportResult{Run: &domain.ImportRun{ID: id}}, nil
}

func (s stubImportSvc) Export(ctx context.Context, w io.Writer, delim string) error {
	if s.export != nil {
		return s.export(ctx, w, delim)
	}
	return nil
}

type stubUserSvc struct {
	roles  func(context.Context) ([]domain.Role, error)
	list   func(context.Context, int, int, string) ([]domain.User, int64, error)
	get    func(context.Context, string) (*domain.User, error)
	create func(context.Context, services.UserInput) (*domain.User, error)
	update func(context.Context, string, services.UserInput) (*domain.User, error)
	del    func(context.Context, string) error
}

func (s stubUserSvc) ListRoles(ctx context.Context) ([]domain.Role, error) {
	if s.roles != nil {
		return s.roles(ctx)
	}
	return nil, nil
}

func (s stubUserSvc) List(ctx context.Context, p, ps int, order string) ([]domain.User, int64, error) {
	if s.list != nil {
		return s.list(ctx, p, ps, order)
	}
	return nil, 0, nil
}

func (s stubUserSvc) Get(ctx context.Context, id string) (*domain.User, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.User{ID: id}, nil
}

func (s stubUserSvc) Create(ctx context.Context, in services.UserInput) (*domain.User, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	return &domain.User{ID: testID, Email: in.Email}, nil
}

func (s stubUserSvc) Update(ctx context.Context, id string, in services.UserInput) (*domain.User, error) {
	if s.update != nil {
		return s.update(ctx, id, in)
	}
	return &domain.User{ID: id, Email: in.Email}, nil
}

func (s stubUserSvc) Delete(ctx context.Context, id string) error {
	if s.del != nil {
		return s.del(ctx, id)
	}
	return nil
}

// ---------- request helpers ----------

// asUser simulates Authenticate by setting the user id the handlers read.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Next()
	}
}

func do(r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
