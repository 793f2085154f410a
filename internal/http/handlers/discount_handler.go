// Discount HTTP handlers.
//
// This file exposes REST endpoints for discounts:
//   - GET    /discounts        (list, paginated, filtered, ETag support)
//   - GET    /discounts/{id}   (get with company, locations and categories)
//   - POST   /discounts        (create)
//   - PUT    /discounts/{id}   (update)
//   - DELETE /discounts/{id}   (delete)
package handlers

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
	"github.com/tbourn/go-benefits-backend/internal/services"
)

// DiscountRequest is the JSON payload for creating or updating a discount.
// Dates are YYYY-MM-DD (RFC 3339 timestamps are accepted too).
type DiscountRequest struct {
	Type        string   `json:"type"         example:"Retail"`
	Description string   `json:"description"  example:"10% off all items"`
	Condition   string   `json:"condition"    example:"Show employee badge"`
	Size        string   `json:"size"         example:"10%"`
	Kind        string   `json:"kind"         example:"DISCOUNT" enums:"DISCOUNT,GIFT,CERTIFICATE,BONUS"`
	StartDate   string   `json:"start_date"   example:"2025-01-01"`
	EndDate     *string  `json:"end_date"     example:"2025-12-31"`
	Image       string   `json:"image"        example:"acme.png"`
	CompanyID   string   `json:"company_id"   format:"uuid"`
	LocationIDs []string `json:"location_ids"`
	CategoryIDs []string `json:"category_ids"`
}

// ListDiscountsResponse wraps a page of discounts.
type ListDiscountsResponse struct {
	Discounts  []domain.Discount `json:"discounts"`
	Pagination Pagination        `json:"pagination"`
}

var discountSorts = map[string]string{
	"start_date": "start_date",
	"end_date":   "end_date",
	"kind":       "kind",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// input converts the request into a service input, or returns the field
// that could not be parsed.
func (r DiscountRequest) input() (services.DiscountInput, *domain.FieldError) {
	in := services.DiscountInput{
		Type:        r.Type,
		Description: r.Description,
		Condition:   r.Condition,
		Size:        r.Size,
		Kind:        r.Kind,
		Image:       r.Image,
		CompanyID:   r.CompanyID,
		LocationIDs: r.LocationIDs,
		CategoryIDs: r.CategoryIDs,
	}
	start, err := parseDate(r.StartDate)
	if err != nil {
		return in, &domain.FieldError{Field: "start_date", Message: "must be a date (YYYY-MM-DD)"}
	}
	in.StartDate = start
	if r.EndDate != nil && strings.TrimSpace(*r.EndDate) != "" {
		end, err := parseDate(*r.EndDate)
		if err != nil {
			return in, &domain.FieldError{Field: "end_date", Message: "must be a date (YYYY-MM-DD)"}
		}
		in.EndDate = &end
	}
	return in, nil
}

func (h *Handlers) bindDiscount(c *gin.Context) (services.DiscountInput, bool) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return services.DiscountInput{}, false
	}
	in, fe := req.input()
	if fe != nil {
		serviceError(c, fe)
		return in, false
	}
	return in, true
}

// discountFilter reads the list filters. An unknown kind answers 400.
func discountFilter(c *gin.Context) (repo.DiscountFilter, bool) {
	f := repo.DiscountFilter{
		CompanyID:  strings.TrimSpace(c.Query("company_id")),
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		LocationID: strings.TrimSpace(c.Query("location_id")),
	}
	if k := c.Query("kind"); k != "" {
		kind, err := domain.ParseDiscountKind(k)
		if err != nil {
			abortWith(c, http.StatusBadRequest, ErrorResponse{Code: ErrCodeValidation, Message: err.Error(), Field: "kind"})
			return f, false
		}
		f.Kind = kind
	}
	return f, true
}

// discountsETag derives a weak validator from the query and the state of
// the matching rows. Any write bumps the count or the latest updated_at.
func discountsETag(rawQuery string, count int64, maxTS *time.Time) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(rawQuery))
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	return fmt.Sprintf(`W/"discounts:%08x:%d:%d"`, h.Sum32(), count, ts)
}

// ListDiscounts godoc
// @ID          listDiscounts
// @Summary     List discounts (paginated)
// @Description Returns a page of discounts with company, locations and categories. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Discounts
// @Produce     json
// @Security    BasicAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"discounts:1a2b3c4d:3:0\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
// @Param       sort           query   string  false "Sort fields, '-' for descending"  example(-start_date)
// @Param       company_id     query   string  false "Filter by company"   format(uuid)
// @Param       category_id    query   string  false "Filter by category"  format(uuid)
// @Param       location_id    query   string  false "Filter by location"  format(uuid)
// @Param       kind           query   string  false "Filter by kind"      Enums(DISCOUNT,GIFT,CERTIFICATE,BONUS)
//
// @Success     200  {object} handlers.ListDiscountsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /discounts [get]
func (h *Handlers) ListDiscounts(c *gin.Context) {
	ctx := c.Request.Context()
	f, valid := discountFilter(c)
	if !valid {
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.svc.Discounts.Stats(ctx, f); err == nil {
		etag := discountsETag(c.Request.URL.RawQuery, count, maxTS)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.svc.Discounts.List(ctx, f, page, pageSize, sortParam(c, discountSorts))
	if err != nil {
		serviceError(c, err)
		return
	}
	if items == nil {
		items = []domain.Discount{}
	}
	ok(c, http.StatusOK, ListDiscountsResponse{Discounts: items, Pagination: newPagination(page, pageSize, total)})
}

// GetDiscount godoc
// @ID          getDiscount
// @Summary     Get a discount
// @Tags        Discounts
// @Produce     json
// @Security    BasicAuth
// @Param       id   path  string  true  "Discount ID (UUID)"  format(uuid)
// @Success     200  {object} domain.Discount
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /discounts/{id} [get]
func (h *Handlers) GetDiscount(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	d, err := h.svc.Discounts.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// CreateDiscount godoc
// @ID          createDiscount
// @Summary     Create a discount
// @Description Company, locations and categories are referenced by id. A discount equal to an existing one of the same company is rejected with 409 duplicate_discount.
// @Tags        Discounts
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       body  body  handlers.DiscountRequest  true  "Discount"
// @Success     201  {object} domain.Discount
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Referenced record not found"
// @Failure     409  {object} handlers.ErrorResponse "Duplicate discount"
// @Router      /discounts [post]
func (h *Handlers) CreateDiscount(c *gin.Context) {
	in, valid := h.bindDiscount(c)
	if !valid {
		return
	}
	d, err := h.svc.Discounts.Create(c.Request.Context(), in)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, d)
}

// UpdateDiscount godoc
// @ID          updateDiscount
// @Summary     Update a discount
// @Description Replaces every writable field, including the location and category sets.
// @Tags        Discounts
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       id    path  string                    true  "Discount ID (UUID)"  format(uuid)
// @Param       body  body  handlers.DiscountRequest  true  "Discount"
// @Success     200  {object} domain.Discount
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     409  {object} handlers.ErrorResponse "Duplicate discount"
// @Router      /discounts/{id} [put]
func (h *Handlers) UpdateDiscount(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	in, valid := h.bindDiscount(c)
	if !valid {
		return
	}
	d, err := h.svc.Discounts.Update(c.Request.Context(), id, in)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// DeleteDiscount godoc
// @ID          deleteDiscount
// @Summary     Delete a discount
// @Tags        Discounts
// @Security    BasicAuth
// @Param       id   path  string  true  "Discount ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /discounts/{id} [delete]
func (h *Handlers) DeleteDiscount(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.svc.Discounts.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}
