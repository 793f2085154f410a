package domain

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrUnknownKind is returned by ParseDiscountKind for text outside the set.
var ErrUnknownKind = errors.New("unknown discount kind")

// FieldError is the first violated constraint of an entity. Validate methods
// return either nil or a *FieldError, so callers can branch with errors.As
// and still print a readable message.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Message }

// fieldRule describes one string constraint. A required field must not be
// blank; min/max bound the rune length when the value is present.
type fieldRule struct {
	field    string
	value    string
	required bool
	min, max int
}

// firstViolation walks rules in order and reports the first failure.
func firstViolation(rules ...fieldRule) error {
	for _, r := range rules {
		if err := r.check(); err != nil {
			return err
		}
	}
	return nil
}

func (r fieldRule) check() error {
	blank := strings.TrimSpace(r.value) == ""
	if blank {
		if r.required || r.min > 0 {
			return &FieldError{Field: r.field, Message: "must not be blank"}
		}
		return nil
	}
	n := utf8.RuneCountInString(r.value)
	if n < r.min || (r.max > 0 && n > r.max) {
		return &FieldError{Field: r.field, Message: lengthMessage(r.min, r.max)}
	}
	return nil
}

func lengthMessage(min, max int) string {
	return "length must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)
}

// Validate checks Company constraints: title 1–50, description 1–1000,
// address 1–150, phone 1–20, link required (≤300).
func (c *Company) Validate() error {
	return firstViolation(
		fieldRule{field: "title", value: c.Title, required: true, min: 1, max: 50},
		fieldRule{field: "description", value: c.Description, min: 1, max: 1000},
		fieldRule{field: "address", value: c.Address, min: 1, max: 150},
		fieldRule{field: "phone", value: c.Phone, min: 1, max: 20},
		fieldRule{field: "link", value: c.Link, required: true, max: 300},
	)
}

// Validate checks Location constraints: country and city 1–50.
func (l *Location) Validate() error {
	return firstViolation(
		fieldRule{field: "country", value: l.Country, required: true, min: 1, max: 50},
		fieldRule{field: "city", value: l.City, required: true, min: 1, max: 50},
	)
}

// Validate checks Category constraints: title 3–50.
func (c *Category) Validate() error {
	return firstViolation(
		fieldRule{field: "title", value: c.Title, required: true, min: 3, max: 50},
	)
}

// Validate checks Discount constraints in a fixed order and returns the
// first violation.
func (d *Discount) Validate() error {
	if err := firstViolation(
		fieldRule{field: "type", value: d.Type, required: true, min: 1, max: 50},
		fieldRule{field: "description", value: d.Description, required: true, min: 1, max: 2000},
		fieldRule{field: "condition", value: d.Condition, required: true, min: 1, max: 500},
		fieldRule{field: "size", value: d.Size, required: true, min: 1, max: 100},
	); err != nil {
		return err
	}
	if !d.Kind.Valid() {
		return &FieldError{Field: "kind", Message: "must be one of " + kindList()}
	}
	if d.StartDate.IsZero() {
		return &FieldError{Field: "start_date", Message: "must not be empty"}
	}
	if err := firstViolation(
		fieldRule{field: "image", value: d.Image, required: true, max: 300},
	); err != nil {
		return err
	}
	if len(d.Locations) == 0 {
		return &FieldError{Field: "locations", Message: "must not be empty"}
	}
	if len(d.Categories) == 0 {
		return &FieldError{Field: "categories", Message: "must not be empty"}
	}
	if d.CompanyID == "" && d.Company.ID == "" {
		return &FieldError{Field: "company", Message: "must not be empty"}
	}
	return nil
}

// Validate checks User profile fields. Password rules live in the auth service.
func (u *User) Validate() error {
	if err := firstViolation(
		fieldRule{field: "email", value: u.Email, required: true, min: 3, max: 254},
		fieldRule{field: "first_name", value: u.FirstName, required: true, min: 1, max: 50},
		fieldRule{field: "last_name", value: u.LastName, required: true, min: 1, max: 50},
	); err != nil {
		return err
	}
	if !strings.Contains(u.Email, "@") {
		return &FieldError{Field: "email", Message: "must be a valid address"}
	}
	return nil
}

func kindList() string {
	parts := make([]string, len(DiscountKinds))
	for i, k := range DiscountKinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
