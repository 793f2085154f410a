// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them instead
// of parsing messages. Generic codes mirror HTTP status semantics, the
// import codes describe why an upload was refused as a whole.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "headers_not_suitable",
//	  "message": "headers not suitable"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeConflict         = "conflict"
	ErrCodeInUse            = "in_use"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Catalog:
	ErrCodeDuplicateDiscount = "duplicate_discount"

	// CSV import:
	ErrCodeInvalidFileType    = "invalid_file_type"
	ErrCodeEmptyFile          = "empty_file"
	ErrCodeFileTooLarge       = "file_too_large"
	ErrCodeHeadersNotSuitable = "headers_not_suitable"
	ErrCodeImportInProgress   = "import_in_progress"
	ErrCodeExportFailed       = "export_failed"
)
