package csvimport

import (
	"bufio"
	"io"
	"strings"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

// Export writes discounts in the upload format: the header line followed by
// one line per discount. Company, locations and categories must be loaded.
// Cells are written as-is; values containing delimiter or a line break do
// not survive a re-import.
func Export(w io.Writer, discounts []domain.Discount, delimiter string) error {
	if delimiter == "" {
		return ErrEmptyDelimiter
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, delimiter) + "\n"); err != nil {
		return err
	}
	for i := range discounts {
		if _, err := bw.WriteString(strings.Join(exportRow(&discounts[i]), delimiter) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func exportRow(d *domain.Discount) []string {
	cities := make([]string, len(d.Locations))
	for i, l := range d.Locations {
		cities[i] = l.City
	}
	titles := make([]string, len(d.Categories))
	for i, c := range d.Categories {
		titles[i] = c.Title
	}
	end := ""
	if d.EndDate != nil {
		end = d.EndDate.Format(DateLayout)
	}

	cells := map[string]string{
		ColID:                  d.ID,
		ColCompanyTitle:        d.Company.Title,
		ColType:                d.Type,
		ColCategory:            strings.Join(titles, ListSeparator),
		ColImage:               d.Image,
		ColCompanyDescription:  d.Company.Description,
		ColCompanyAddress:      d.Company.Address,
		ColCompanyPhone:        d.Company.Phone,
		ColLinks:               d.Company.Link,
		ColSize:                d.Size,
		ColDiscountType:        string(d.Kind),
		ColDiscountDescription: d.Description,
		ColDiscountCondition:   d.Condition,
		ColStartDate:           d.StartDate.Format(DateLayout),
		ColEndDate:             end,
		ColLocation:            strings.Join(cities, ListSeparator),
	}
	out := make([]string, len(Columns))
	for i, col := range Columns {
		out[i] = cells[col]
	}
	return out
}
