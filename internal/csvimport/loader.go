// Package csvimport implements the discount bulk-loader: it validates the
// header of a delimited upload, parses each data line into a Row, reconciles
// the row against existing companies, locations, categories and discounts,
// and reports one Outcome per line. Only header and stream failures abort a
// run; every per-row problem becomes an Outcome.
//
// The inverse direction, Export, writes discounts in the same format.
package csvimport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gorm.io/gorm"
)

// Loader runs imports against a database.
type Loader struct {
	DB *gorm.DB
	// Now supplies the clock for date fallbacks. Defaults to time.Now.
	Now func() time.Time
}

// Load reads r to the end and imports every data line. The first line must
// be the header; blank lines are skipped without an outcome. A byte order
// mark (UTF-8 or UTF-16) is honoured and removed.
//
// Errors returned are run-level only: ErrEmptyFile, ErrHeadersNotSuitable,
// ErrEmptyDelimiter, a read failure or context cancellation. In those cases
// no report is returned, although rows committed before a mid-stream
// failure stay committed.
func (l *Loader) Load(ctx context.Context, r io.Reader, delimiter string) (*Report, error) {
	if delimiter == "" {
		return nil, ErrEmptyDelimiter
	}
	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	header, err := readLine(br)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.TrimSpace(header) == "" && errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	schema, herr := ValidateHeader(header, delimiter)
	if herr != nil {
		return nil, herr
	}

	idx, ierr := LoadIndex(ctx, l.DB)
	if ierr != nil {
		return nil, ierr
	}
	rec := &Reconciler{DB: l.DB, Index: idx, Now: l.Now}
	log := zerolog.Ctx(ctx)

	report := &Report{Outcomes: []Outcome{}}
	for lineNo := 2; !errors.Is(err, io.EOF); lineNo++ {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		var line string
		line, err = readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read line %d: %w", lineNo, err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		var o Outcome
		row, perr := schema.ParseRow(line)
		if fce := (*FieldCountError)(nil); errors.As(perr, &fce) {
			o = failed(fce.FirstField, fieldCountMessage)
		} else {
			o = rec.Reconcile(ctx, row)
		}
		if o.Status == StatusFailed {
			log.Debug().Int("line", lineNo).Str("row", o.Row).Str("detail", o.Detail).Msg("import row failed")
		}
		report.add(o)
	}
	return report, nil
}

// readLine returns the next line without its terminator. At end of input it
// returns the remaining text together with io.EOF.
func readLine(br *bufio.Reader) (string, error) {
	s, err := br.ReadString('\n')
	return strings.TrimRight(s, "\r\n"), err
}
