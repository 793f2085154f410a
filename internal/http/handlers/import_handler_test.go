package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-benefits-backend/internal/csvimport"
	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/http/middleware"
	"github.com/tbourn/go-benefits-backend/internal/services"
)

func newImportRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(asUser("u1"))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.POST("/discounts/upload", h.UploadDiscounts)
	r.GET("/discounts/imports/:id", h.GetImport)
	r.GET("/discounts/export", h.ExportDiscounts)
	return r
}

// uploadRequest builds a multipart request with the file under "file" and
// any extra form fields given as name/value pairs.
func uploadRequest(t *testing.T, filename, content string, fields ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i+1 < len(fields); i += 2 {
		if err := mw.WriteField(fields[i], fields[i+1]); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = io.WriteString(fw, content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/discounts/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadDiscounts_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got services.ImportRequest
	var gotBody string
	h := New(Services{Imports: stubImportSvc{
		imp: func(_ context.Context, req services.ImportRequest) (*services.ImportResult, error) {
			got = req
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
			return &services.ImportResult{
				Run:   &domain.ImportRun{ID: testID, Filename: req.Filename, Total: 2, OK: 1, Failed: 1},
				Lines: []string{"1: OK", "2: Company is required"},
			}, nil
		},
	}})

	req := uploadRequest(t, "discounts.csv", "id;type\n1;x\n", "delimiter", ",")
	req.Header.Set(middleware.HeaderIdempotencyKey, "key-1")
	w := httptest.NewRecorder()
	newImportRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got.UserID != "u1" || got.Key != "key-1" || got.Filename != "discounts.csv" || got.Delimiter != "," {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Size != int64(len("id;type\n1;x\n")) || gotBody != "id;type\n1;x\n" {
		t.Fatalf("size=%d body=%q", got.Size, gotBody)
	}
	if w.Header().Get(HeaderIdempotentReplayed) != "" {
		t.Fatalf("fresh run must not be marked replayed")
	}
	var resp ImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.ImportID != testID || resp.Total != 2 || resp.OK != 1 || resp.Failed != 1 || len(resp.Outcomes) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUploadDiscounts_DelimiterFromQueryAndReplayHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var gotDelim string
	h := New(Services{Imports: stubImportSvc{
		imp: func(_ context.Context, req services.ImportRequest) (*services.ImportResult, error) {
			gotDelim = req.Delimiter
			return &services.ImportResult{Run: &domain.ImportRun{ID: testID}, Replayed: true}, nil
		},
	}})

	req := uploadRequest(t, "d.csv", "x")
	req.URL.RawQuery = "delimiter=%7C"
	w := httptest.NewRecorder()
	newImportRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK || gotDelim != "|" {
		t.Fatalf("status=%d delimiter=%q", w.Code, gotDelim)
	}
	if w.Header().Get(HeaderIdempotentReplayed) != "true" {
		t.Fatalf("missing replay header")
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["replayed"] != true {
		t.Fatalf("body=%v", body)
	}
	if arr, isArr := body["outcomes"].([]any); !isArr || len(arr) != 0 {
		t.Fatalf("outcomes=%#v; want []", body["outcomes"])
	}
}

func TestUploadDiscounts_Errors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name     string
		filename string
		err      error
		wantCode int
		wantErr  string
	}{
		{"missing file", "", nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"file type", "d.txt", services.ErrInvalidFileType, http.StatusBadRequest, ErrCodeInvalidFileType},
		{"empty", "d.csv", services.ErrEmptyUpload, http.StatusBadRequest, ErrCodeEmptyFile},
		{"too large", "d.csv", services.ErrFileTooLarge, http.StatusRequestEntityTooLarge, ErrCodeFileTooLarge},
		{"headers", "d.csv", fmt.Errorf("%w: column 3", csvimport.ErrHeadersNotSuitable), http.StatusBadRequest, ErrCodeHeadersNotSuitable},
		{"busy", "d.csv", services.ErrImportInProgress, http.StatusConflict, ErrCodeImportInProgress},
		{"internal", "d.csv", errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(Services{Imports: stubImportSvc{
				imp: func(context.Context, services.ImportRequest) (*services.ImportResult, error) {
					return nil, tt.err
				},
			}})
			w := httptest.NewRecorder()
			newImportRouter(h).ServeHTTP(w, uploadRequest(t, tt.filename, "x"))
			if w.Code != tt.wantCode {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			var er ErrorResponse
			_ = json.Unmarshal(w.Body.Bytes(), &er)
			if er.Code != tt.wantErr {
				t.Fatalf("code=%q; want %q", er.Code, tt.wantErr)
			}
			if tt.wantErr == ErrCodeInternal && strings.Contains(er.Message, "fire") {
				t.Fatalf("internal error text leaked: %q", er.Message)
			}
		})
	}
}

func TestUploadDiscounts_BodyOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(Services{Imports: stubImportSvc{}})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 64)
		c.Next()
	})
	r.POST("/discounts/upload", h.UploadDiscounts)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "d.csv", strings.Repeat("a", 4096)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetImport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(Services{Imports: stubImportSvc{
		getRun: func(_ context.Context, id string) (*services.ImportResult, error) {
			if id != testID {
				return nil, services.ErrImportRunNotFound
			}
			return &services.ImportResult{Run: &domain.ImportRun{ID: id, Total: 1, Skipped: 1}, Lines: []string{"1: SKIP already exists"}}, nil
		},
	}})
	r := newImportRouter(h)

	w := do(r, http.MethodGet, "/discounts/imports/"+testID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp ImportResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Skipped != 1 || resp.Outcomes[0] != "1: SKIP already exists" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if w := do(r, http.MethodGet, "/discounts/imports/00000000-0000-4000-8000-000000000000", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing -> %d", w.Code)
	}
}

func TestExportDiscounts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var gotDelim string
	h := New(Services{Imports: stubImportSvc{
		export: func(_ context.Context, w io.Writer, delim string) error {
			gotDelim = delim
			_, err := io.WriteString(w, "id;type\n1;x\n")
			return err
		},
	}})
	w := do(newImportRouter(h), http.MethodGet, "/discounts/export", "")
	if w.Code != http.StatusOK || gotDelim != "" {
		t.Fatalf("status=%d delimiter=%q", w.Code, gotDelim)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content-type=%q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "discounts.csv") {
		t.Fatalf("missing attachment header")
	}
	if w.Body.String() != "id;type\n1;x\n" {
		t.Fatalf("body=%q", w.Body.String())
	}

	h = New(Services{Imports: stubImportSvc{
		export: func(context.Context, io.Writer, string) error { return errors.New("db down") },
	}})
	w = do(newImportRouter(h), http.MethodGet, "/discounts/export?delimiter=,", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if er.Code != ErrCodeExportFailed {
		t.Fatalf("code=%q", er.Code)
	}
}
