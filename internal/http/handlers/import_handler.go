// Import HTTP handlers.
//
// This file exposes the CSV bulk-load endpoints:
//   - POST /discounts/upload        (multipart upload, Idempotency-Key aware)
//   - GET  /discounts/imports/{id}  (stored report of a previous run)
//   - GET  /discounts/export        (every discount in the upload format)
package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-benefits-backend/internal/http/middleware"
	"github.com/tbourn/go-benefits-backend/internal/services"
)

// HeaderIdempotentReplayed is set to "true" when an upload response was
// served from a stored run.
const HeaderIdempotentReplayed = "Idempotent-Replayed"

// ImportResponse is the report of one CSV upload. Outcomes holds one
// "<first field>: <detail>" line per data row in file order.
type ImportResponse struct {
	ImportID  string    `json:"import_id" example:"6f1c2d3e-0000-4000-8000-000000000001"`
	Filename  string    `json:"filename"  example:"discounts.csv"`
	Total     int       `json:"total"     example:"3"`
	OK        int       `json:"ok"        example:"1"`
	Skipped   int       `json:"skipped"   example:"1"`
	Failed    int       `json:"failed"    example:"1"`
	Outcomes  []string  `json:"outcomes"`
	Replayed  bool      `json:"replayed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func importResponse(res *services.ImportResult) ImportResponse {
	run := res.Run
	lines := res.Lines
	if lines == nil {
		lines = []string{}
	}
	return ImportResponse{
		ImportID:  run.ID,
		Filename:  run.Filename,
		Total:     run.Total,
		OK:        run.OK,
		Skipped:   run.Skipped,
		Failed:    run.Failed,
		Outcomes:  lines,
		Replayed:  res.Replayed,
		CreatedAt: run.CreatedAt,
		ExpiresAt: run.ExpiresAt,
	}
}

// delimiterParam reads the delimiter from the form, then the query.
func delimiterParam(c *gin.Context) string {
	if d := c.PostForm("delimiter"); d != "" {
		return d
	}
	return c.Query("delimiter")
}

// UploadDiscounts godoc
// @ID          uploadDiscounts
// @Summary     Bulk-load discounts from CSV
// @Description Each data row is created, skipped as already existing, or rejected; the response lists one outcome per row in file order. Only one import runs at a time. Retrying with the same Idempotency-Key returns the stored report without importing again.
// @Tags        Import
// @Accept      multipart/form-data
// @Produce     json
// @Security    BasicAuth
//
// @Param       Idempotency-Key  header    string  false "Client key for safe retries"  example(upload-2025-01-01)
// @Param       file             formData  file    true  "CSV file (.csv)"
// @Param       delimiter        formData  string  false "Field delimiter"  default(;)
//
// @Success     200  {object} handlers.ImportResponse
// @Header      200  {string} Idempotent-Replayed "true when served from a stored run"
// @Failure     400  {object} handlers.ErrorResponse "invalid_file_type, empty_file or headers_not_suitable"
// @Failure     409  {object} handlers.ErrorResponse "import_in_progress"
// @Failure     413  {object} handlers.ErrorResponse "file_too_large"
// @Failure     429  {object} handlers.ErrorResponse "Too many requests"
// @Router      /discounts/upload [post]
func (h *Handlers) UploadDiscounts(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			serviceError(c, services.ErrFileTooLarge)
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field 'file' is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		serviceError(c, err)
		return
	}
	defer f.Close()

	key, _ := middleware.GetIdempotencyKey(c)
	res, err := h.svc.Imports.Import(c.Request.Context(), services.ImportRequest{
		UserID:    middleware.UserIDFrom(c),
		Key:       key,
		Filename:  fh.Filename,
		Size:      fh.Size,
		Delimiter: delimiterParam(c),
		Body:      f,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	if res.Replayed {
		c.Header(HeaderIdempotentReplayed, "true")
	}
	ok(c, http.StatusOK, importResponse(res))
}

// GetImport godoc
// @ID          getImport
// @Summary     Get an import report
// @Tags        Import
// @Produce     json
// @Security    BasicAuth
// @Param       id   path  string  true  "Import ID (UUID)"  format(uuid)
// @Success     200  {object} handlers.ImportResponse
// @Failure     404  {object} handlers.ErrorResponse "Not found or expired"
// @Router      /discounts/imports/{id} [get]
func (h *Handlers) GetImport(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	res, err := h.svc.Imports.GetRun(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, importResponse(res))
}

// ExportDiscounts godoc
// @ID          exportDiscounts
// @Summary     Export discounts as CSV
// @Description Writes every discount in the upload format, so the file can be uploaded again.
// @Tags        Import
// @Produce     text/csv
// @Security    BasicAuth
// @Param       delimiter  query  string  false "Field delimiter"  default(;)
// @Success     200  {string} string "CSV document"
// @Failure     500  {object} handlers.ErrorResponse "Export failed"
// @Router      /discounts/export [get]
func (h *Handlers) ExportDiscounts(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Imports.Export(c.Request.Context(), &buf, c.Query("delimiter")); err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("export discounts")
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, "export failed")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="discounts.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
