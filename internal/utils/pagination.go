// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ParseSort turns a sort query value such as "title" or "-created_at,title"
// into an ORDER BY clause. A leading "-" sorts descending. allowed maps the
// public field names to column names; unknown fields are dropped, so the
// result is safe to pass to SQL. An empty result means "use the default".
//
// Example:
//
//	utils.ParseSort("-title", map[string]string{"title": "title"}) // "title desc"
func ParseSort(s string, allowed map[string]string) string {
	var parts []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		dir := "asc"
		if strings.HasPrefix(f, "-") {
			dir, f = "desc", f[1:]
		}
		col, ok := allowed[f]
		if !ok {
			continue
		}
		parts = append(parts, col+" "+dir)
	}
	return strings.Join(parts, ", ")
}
