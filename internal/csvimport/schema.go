package csvimport

import (
	"strings"
)

// Canonical column names of the discount upload format.
const (
	ColID                  = "id"
	ColCompanyTitle        = "company_title"
	ColType                = "type"
	ColCategory            = "category"
	ColImage               = "image"
	ColCompanyDescription  = "company_description"
	ColCompanyAddress      = "company_address"
	ColCompanyPhone        = "company_phone"
	ColLinks               = "links"
	ColSize                = "size"
	ColDiscountType        = "discount_type"
	ColDiscountDescription = "discount_description"
	ColDiscountCondition   = "discount_condition"
	ColStartDate           = "start_date"
	ColEndDate             = "end_date"
	ColLocation            = "location"
)

// Columns is the required header, in order.
var Columns = []string{
	ColID, ColCompanyTitle, ColType, ColCategory, ColImage,
	ColCompanyDescription, ColCompanyAddress, ColCompanyPhone, ColLinks,
	ColSize, ColDiscountType, ColDiscountDescription, ColDiscountCondition,
	ColStartDate, ColEndDate, ColLocation,
}

// Schema is the validated header of one run. It is created by
// ValidateHeader and passed explicitly to row parsing; nothing about it is
// shared between runs.
type Schema struct {
	delimiter string
	pos       map[string]int
}

// ValidateHeader splits line on delim (a literal string, not a pattern) and
// requires the result to equal Columns position by position. A trailing
// carriage return is ignored.
func ValidateHeader(line, delim string) (*Schema, error) {
	if delim == "" {
		return nil, ErrEmptyDelimiter
	}
	got := strings.Split(strings.TrimRight(line, "\r\n"), delim)
	if len(got) != len(Columns) {
		return nil, ErrHeadersNotSuitable
	}
	pos := make(map[string]int, len(Columns))
	for i, want := range Columns {
		if strings.TrimSpace(got[i]) != want {
			return nil, ErrHeadersNotSuitable
		}
		pos[want] = i
	}
	return &Schema{delimiter: delim, pos: pos}, nil
}

// Len is the number of columns every data line must carry.
func (s *Schema) Len() int { return len(s.pos) }

// Delimiter returns the field separator the header was split with.
func (s *Schema) Delimiter() string { return s.delimiter }
