package repo

import (
	"context"

	"gorm.io/gorm"
)

// Page is an offset window plus an optional ORDER BY clause. Order must come
// from a whitelist (see utils.ParseSort); it is passed to SQL verbatim.
type Page struct {
	Offset int
	Limit  int
	Order  string
}

func (p Page) apply(q *gorm.DB, defaultOrder string) *gorm.DB {
	order := p.Order
	if order == "" {
		order = defaultOrder
	}
	q = q.Order(order)
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

// listPage counts rows matched by scope and loads one page of them.
// The count is taken before Order/Offset/Limit and preloads are applied.
func listPage[T any](ctx context.Context, db *gorm.DB, p Page, defaultOrder string, scope func(*gorm.DB) *gorm.DB, preloads ...string) ([]T, int64, error) {
	var zero T
	q := db.WithContext(ctx).Model(&zero)
	if scope != nil {
		q = scope(q)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []T{}
	if total == 0 {
		return out, 0, nil
	}
	fq := q.Session(&gorm.Session{})
	for _, rel := range preloads {
		fq = fq.Preload(rel)
	}
	err := p.apply(fq, defaultOrder).Find(&out).Error
	return out, total, err
}

// deleteByID removes one row by primary key. It returns ErrNotFound when no
// row matched and ErrReferenced when a foreign key still points at it.
func deleteByID[T any](ctx context.Context, db *gorm.DB, id string) error {
	var zero T
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
