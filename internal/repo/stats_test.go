package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

func TestDiscountsStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, _, err := DiscountsStats(context.Background(), db, DiscountFilter{}); err == nil {
		t.Fatalf("expected error due to missing discounts table")
	}
}

func TestDiscountsStats_ZeroRows(t *testing.T) {
	db, _, _, _ := newCatalogDB(t)
	count, maxAt, err := DiscountsStats(context.Background(), db, DiscountFilter{})
	if err != nil {
		t.Fatalf("DiscountsStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestDiscountsStats_FilterAndMax(t *testing.T) {
	db, co, loc, cat := newCatalogDB(t)
	ctx := context.Background()

	d1 := newDiscount(co, loc, cat, "Retail")
	d2 := newDiscount(co, loc, cat, "Gym")
	d2.Kind = domain.KindGift
	for _, d := range []*domain.Discount{d1, d2} {
		if err := CreateDiscount(ctx, db, d); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	db.Model(&domain.Discount{}).Where("id = ?", d1.ID).UpdateColumn("updated_at", t2)
	db.Model(&domain.Discount{}).Where("id = ?", d2.ID).UpdateColumn("updated_at", t1)

	count, maxAt, err := DiscountsStats(ctx, db, DiscountFilter{})
	if err != nil {
		t.Fatalf("DiscountsStats: %v", err)
	}
	if count != 2 || maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected (2, %v), got (%d, %v)", t2, count, maxAt)
	}

	count, maxAt, err = DiscountsStats(ctx, db, DiscountFilter{Kind: domain.KindGift})
	if err != nil || count != 1 || maxAt == nil || !maxAt.Equal(t1) {
		t.Fatalf("filtered stats: count=%d max=%v err=%v", count, maxAt, err)
	}
}
