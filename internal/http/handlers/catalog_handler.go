// Catalog HTTP handlers.
//
// This file exposes REST endpoints for the reference data discounts point
// at. Categories, companies and locations share one set of generic helpers;
// the exported methods exist so each route carries its own documentation.
//
//   - GET    /{categories,companies,locations}       (list, paginated, sortable)
//   - GET    /{categories,companies,locations}/{id}  (get)
//   - POST   /{categories,companies,locations}       (create)
//   - PUT    /{categories,companies,locations}/{id}  (update)
//   - DELETE /{categories,companies,locations}/{id}  (delete)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

//
// DTOs
//

// CategoryRequest is the JSON payload for creating or updating a category.
type CategoryRequest struct {
	Title string `json:"title" example:"Food"`
}

// CompanyRequest is the JSON payload for creating or updating a company.
type CompanyRequest struct {
	Title       string `json:"title"       example:"Acme"`
	Description string `json:"description" example:"Outdoor gear"`
	Address     string `json:"address"     example:"1 Main St"`
	Phone       string `json:"phone"       example:"+1 555 0100"`
	Link        string `json:"link"        example:"https://acme.example"`
}

// LocationRequest is the JSON payload for creating or updating a location.
type LocationRequest struct {
	Country string `json:"country" example:"US"`
	City    string `json:"city"    example:"Springfield"`
}

// ListCategoriesResponse wraps a page of categories.
type ListCategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
	Pagination Pagination        `json:"pagination"`
}

// ListCompaniesResponse wraps a page of companies.
type ListCompaniesResponse struct {
	Companies  []domain.Company `json:"companies"`
	Pagination Pagination       `json:"pagination"`
}

// ListLocationsResponse wraps a page of locations.
type ListLocationsResponse struct {
	Locations  []domain.Location `json:"locations"`
	Pagination Pagination        `json:"pagination"`
}

var (
	categorySorts = map[string]string{"title": "title", "created_at": "created_at"}
	companySorts  = map[string]string{"title": "title", "created_at": "created_at"}
	locationSorts = map[string]string{"country": "country", "city": "city", "created_at": "created_at"}
)

func (r CategoryRequest) model(id string) *domain.Category {
	return &domain.Category{ID: id, Title: r.Title}
}

func (r CompanyRequest) model(id string) *domain.Company {
	return &domain.Company{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Address:     r.Address,
		Phone:       r.Phone,
		Link:        r.Link,
	}
}

func (r LocationRequest) model(id string) *domain.Location {
	return &domain.Location{ID: id, Country: r.Country, City: r.City}
}

//
// Generic helpers
//

// listCatalog answers false after writing an error response.
func listCatalog[T any](c *gin.Context, svc CatalogService[T], sorts map[string]string) ([]T, Pagination, bool) {
	page, pageSize := clampPagination(c)
	items, total, err := svc.List(c.Request.Context(), page, pageSize, sortParam(c, sorts))
	if err != nil {
		serviceError(c, err)
		return nil, Pagination{}, false
	}
	if items == nil {
		items = []T{}
	}
	return items, newPagination(page, pageSize, total), true
}

func getCatalog[T any](c *gin.Context, svc CatalogService[T]) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	v, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// createCatalog binds a request of type R and inserts the model it builds.
func createCatalog[T any, R interface{ model(string) *T }](c *gin.Context, svc CatalogService[T]) {
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	v := req.model("")
	if err := svc.Create(c.Request.Context(), v); err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, v)
}

func updateCatalog[T any, R interface{ model(string) *T }](c *gin.Context, svc CatalogService[T]) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	v, err := svc.Update(c.Request.Context(), req.model(id))
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

func deleteCatalog[T any](c *gin.Context, svc CatalogService[T]) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}

//
// Categories
//

// ListCategories godoc
// @ID          listCategories
// @Summary     List categories (paginated)
// @Tags        Categories
// @Produce     json
// @Security    BasicAuth
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Param       sort       query  string  false "Sort fields, '-' for descending"  example(-created_at)
// @Success     200  {object} handlers.ListCategoriesResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	items, p, done := listCatalog(c, h.svc.Categories, categorySorts)
	if done {
		ok(c, http.StatusOK, ListCategoriesResponse{Categories: items, Pagination: p})
	}
}

// GetCategory godoc
// @ID          getCategory
// @Summary     Get a category
// @Tags        Categories
// @Produce     json
// @Security    BasicAuth
// @Param       id   path  string  true  "Category ID (UUID)"  format(uuid)
// @Success     200  {object} domain.Category
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /categories/{id} [get]
func (h *Handlers) GetCategory(c *gin.Context) { getCatalog(c, h.svc.Categories) }

// CreateCategory godoc
// @ID          createCategory
// @Summary     Create a category
// @Tags        Categories
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       body  body  handlers.CategoryRequest  true  "Category"
// @Success     201  {object} domain.Category
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     409  {object} handlers.ErrorResponse "Title taken"
// @Router      /categories [post]
func (h *Handlers) CreateCategory(c *gin.Context) {
	createCatalog[domain.Category, CategoryRequest](c, h.svc.Categories)
}

// UpdateCategory godoc
// @ID          updateCategory
// @Summary     Update a category
// @Tags        Categories
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       id    path  string                    true  "Category ID (UUID)"  format(uuid)
// @Param       body  body  handlers.CategoryRequest  true  "Category"
// @Success     200  {object} domain.Category
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     409  {object} handlers.ErrorResponse "Title taken"
// @Router      /categories/{id} [put]
func (h *Handlers) UpdateCategory(c *gin.Context) {
	updateCatalog[domain.Category, CategoryRequest](c, h.svc.Categories)
}

// DeleteCategory godoc
// @ID          deleteCategory
// @Summary     Delete a category
// @Tags        Categories
// @Security    BasicAuth
// @Param       id   path  string  true  "Category ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /categories/{id} [delete]
func (h *Handlers) DeleteCategory(c *gin.Context) { deleteCatalog(c, h.svc.Categories) }

//
// Companies
//

// ListCompanies godoc
// @ID          listCompanies
// @Summary     List companies (paginated)
// @Tags        Companies
// @Produce     json
// @Security    BasicAuth
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Param       sort       query  string  false "Sort fields, '-' for descending"  example(title)
// @Success     200  {object} handlers.ListCompaniesResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /companies [get]
func (h *Handlers) ListCompanies(c *gin.Context) {
	items, p, done := listCatalog(c, h.svc.Companies, companySorts)
	if done {
		ok(c, http.StatusOK, ListCompaniesResponse{Companies: items, Pagination: p})
	}
}

// GetCompany godoc
// @ID          getCompany
// @Summary     Get a company
// @Tags        Companies
// @Produce     json
// @Security    BasicAuth
// @Param       id   path  string  true  "Company ID (UUID)"  format(uuid)
// @Success     200  {object} domain.Company
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /companies/{id} [get]
func (h *Handlers) GetCompany(c *gin.Context) { getCatalog(c, h.svc.Companies) }

// CreateCompany godoc
// @ID          createCompany
// @Summary     Create a company
// @Tags        Companies
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       body  body  handlers.CompanyRequest  true  "Company"
// @Success     201  {object} domain.Company
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     409  {object} handlers.ErrorResponse "Title taken"
// @Router      /companies [post]
func (h *Handlers) CreateCompany(c *gin.Context) {
	createCatalog[domain.Company, CompanyRequest](c, h.svc.Companies)
}

// UpdateCompany godoc
// @ID          updateCompany
// @Summary     Update a company
// @Tags        Companies
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       id    path  string                   true  "Company ID (UUID)"  format(uuid)
// @Param       body  body  handlers.CompanyRequest  true  "Company"
// @Success     200  {object} domain.Company
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /companies/{id} [put]
func (h *Handlers) UpdateCompany(c *gin.Context) {
	updateCatalog[domain.Company, CompanyRequest](c, h.svc.Companies)
}

// DeleteCompany godoc
// @ID          deleteCompany
// @Summary     Delete a company
// @Description Fails with 409 in_use while the company still owns discounts.
// @Tags        Companies
// @Security    BasicAuth
// @Param       id   path  string  true  "Company ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     409  {object} handlers.ErrorResponse "Still referenced"
// @Router      /companies/{id} [delete]
func (h *Handlers) DeleteCompany(c *gin.Context) { deleteCatalog(c, h.svc.Companies) }

//
// Locations
//

// ListLocations godoc
// @ID          listLocations
// @Summary     List locations (paginated)
// @Tags        Locations
// @Produce     json
// @Security    BasicAuth
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Param       sort       query  string  false "Sort fields, '-' for descending"  example(country,city)
// @Success     200  {object} handlers.ListLocationsResponse
// @Router      /locations [get]
func (h *Handlers) ListLocations(c *gin.Context) {
	items, p, done := listCatalog(c, h.svc.Locations, locationSorts)
	if done {
		ok(c, http.StatusOK, ListLocationsResponse{Locations: items, Pagination: p})
	}
}

// GetLocation godoc
// @ID          getLocation
// @Summary     Get a location
// @Tags        Locations
// @Produce     json
// @Security    BasicAuth
// @Param       id   path  string  true  "Location ID (UUID)"  format(uuid)
// @Success     200  {object} domain.Location
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /locations/{id} [get]
func (h *Handlers) GetLocation(c *gin.Context) { getCatalog(c, h.svc.Locations) }

// CreateLocation godoc
// @ID          createLocation
// @Summary     Create a location
// @Tags        Locations
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       body  body  handlers.LocationRequest  true  "Location"
// @Success     201  {object} domain.Location
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     409  {object} handlers.ErrorResponse "City already exists in country"
// @Router      /locations [post]
func (h *Handlers) CreateLocation(c *gin.Context) {
	createCatalog[domain.Location, LocationRequest](c, h.svc.Locations)
}

// UpdateLocation godoc
// @ID          updateLocation
// @Summary     Update a location
// @Tags        Locations
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       id    path  string                    true  "Location ID (UUID)"  format(uuid)
// @Param       body  body  handlers.LocationRequest  true  "Location"
// @Success     200  {object} domain.Location
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /locations/{id} [put]
func (h *Handlers) UpdateLocation(c *gin.Context) {
	updateCatalog[domain.Location, LocationRequest](c, h.svc.Locations)
}

// DeleteLocation godoc
// @ID          deleteLocation
// @Summary     Delete a location
// @Tags        Locations
// @Security    BasicAuth
// @Param       id   path  string  true  "Location ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /locations/{id} [delete]
func (h *Handlers) DeleteLocation(c *gin.Context) { deleteCatalog(c, h.svc.Locations) }
