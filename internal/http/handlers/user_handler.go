// User HTTP handlers.
//
// This file exposes account management for administrators and the
// current-user endpoint:
//   - GET    /roles
//   - GET    /users, GET /users/{id}, POST /users, PUT /users/{id}, DELETE /users/{id}
//   - GET    /users/me
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/http/middleware"
	"github.com/tbourn/go-benefits-backend/internal/services"
)

// UserRequest is the JSON payload for creating or updating a user. On
// update an empty password keeps the current one.
type UserRequest struct {
	Email      string  `json:"email"       example:"jane@example.com"`
	FirstName  string  `json:"first_name"  example:"Jane"`
	LastName   string  `json:"last_name"   example:"Doe"`
	Password   string  `json:"password"    example:"correct-horse"`
	Role       string  `json:"role"        example:"EMPLOYEE" enums:"ADMIN,MODERATOR,EMPLOYEE"`
	LocationID *string `json:"location_id" format:"uuid"`
}

func (r UserRequest) input() services.UserInput {
	return services.UserInput{
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Password:   r.Password,
		Role:       r.Role,
		LocationID: r.LocationID,
	}
}

// ListUsersResponse wraps a page of users.
type ListUsersResponse struct {
	Users      []domain.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// ListRolesResponse lists every role.
type ListRolesResponse struct {
	Roles []domain.Role `json:"roles"`
}

var userSorts = map[string]string{
	"email":      "email",
	"last_name":  "last_name",
	"created_at": "created_at",
}

// ListRoles godoc
// @ID          listRoles
// @Summary     List roles
// @Tags        Users
// @Produce     json
// @Security    BasicAuth
// @Success     200  {object} handlers.ListRolesResponse
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Router      /roles [get]
func (h *Handlers) ListRoles(c *gin.Context) {
	roles, err := h.svc.Users.ListRoles(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	if roles == nil {
		roles = []domain.Role{}
	}
	ok(c, http.StatusOK, ListRolesResponse{Roles: roles})
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users (paginated)
// @Tags        Users
// @Produce     json
// @Security    BasicAuth
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Param       sort       query  string  false "Sort fields, '-' for descending"  example(email)
// @Success     200  {object} handlers.ListUsersResponse
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	page, pageSize := clampPagination(c)
	users, total, err := h.svc.Users.List(c.Request.Context(), page, pageSize, sortParam(c, userSorts))
	if err != nil {
		serviceError(c, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	ok(c, http.StatusOK, ListUsersResponse{Users: users, Pagination: newPagination(page, pageSize, total)})
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user
// @Tags        Users
// @Produce     json
// @Security    BasicAuth
// @Param       id   path  string  true  "User ID (UUID)"  format(uuid)
// @Success     200  {object} domain.User
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	u, err := h.svc.Users.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// Me godoc
// @ID          getCurrentUser
// @Summary     Get the authenticated user
// @Tags        Users
// @Produce     json
// @Security    BasicAuth
// @Success     200  {object} domain.User
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /users/me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid := middleware.UserIDFrom(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	u, err := h.svc.Users.Get(c.Request.Context(), uid)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// CreateUser godoc
// @ID          createUser
// @Summary     Create a user
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       body  body  handlers.UserRequest  true  "User"
// @Success     201  {object} domain.User
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     409  {object} handlers.ErrorResponse "Email taken"
// @Router      /users [post]
func (h *Handlers) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, err := h.svc.Users.Create(c.Request.Context(), req.input())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

// UpdateUser godoc
// @ID          updateUser
// @Summary     Update a user
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       id    path  string                true  "User ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UserRequest  true  "User"
// @Success     200  {object} domain.User
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /users/{id} [put]
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, err := h.svc.Users.Update(c.Request.Context(), id, req.input())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Delete a user
// @Description Administrators cannot delete their own account.
// @Tags        Users
// @Security    BasicAuth
// @Param       id   path  string  true  "User ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     409  {object} handlers.ErrorResponse "Own account"
// @Router      /users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if id == middleware.UserIDFrom(c) {
		fail(c, http.StatusConflict, ErrCodeConflict, "cannot delete the current user")
		return
	}
	if err := h.svc.Users.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}
