package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestGetImportRunByKey_BlankKey_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.ImportRun{})
	rec, err := GetImportRunByKey(context.Background(), db, "u1", "   ", time.Now().UTC())
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for blank key, got (%v, %v)", rec, err)
	}
}

func TestGetImportRunByKey_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.ImportRun{})
	now := time.Now().UTC()

	exp := &domain.ImportRun{
		ID: "expired", UserID: "u1", Key: strPtr("k1"), Filename: "a.csv", Delimiter: ";",
		CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	rec, err := GetImportRunByKey(context.Background(), db, "u1", "k1", now)
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}
	rec, err = GetImportRunByKey(context.Background(), db, "u2", "k1", now)
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for other user, got (%v, %v)", rec, err)
	}
}

func TestCreateImportRun_SuccessThenDuplicate(t *testing.T) {
	db := newTestDB(t, &domain.ImportRun{})
	ctx := context.Background()

	rec := &domain.ImportRun{UserID: "u1", Key: strPtr("k1"), Filename: "a.csv", Delimiter: ";", Total: 2, OK: 1, Skipped: 1, Outcomes: `["1: OK","2: SKIP already exists"]`}
	if err := CreateImportRun(ctx, db, rec, time.Hour); err != nil {
		t.Fatalf("CreateImportRun: %v", err)
	}
	if rec.ID == "" || !rec.ExpiresAt.After(rec.CreatedAt) {
		t.Fatalf("expected id and expiry, got %+v", rec)
	}

	got, err := GetImportRunByKey(ctx, db, "u1", "k1", time.Now().UTC())
	if err != nil || got.ID != rec.ID || got.OK != 1 || got.Skipped != 1 {
		t.Fatalf("GetImportRunByKey: %+v err=%v", got, err)
	}

	dup := &domain.ImportRun{UserID: "u1", Key: strPtr("k1"), Filename: "b.csv", Delimiter: ";", Outcomes: "[]"}
	if err := CreateImportRun(ctx, db, dup, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateImportRun_NilKeysDoNotCollide(t *testing.T) {
	db := newTestDB(t, &domain.ImportRun{})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		rec := &domain.ImportRun{UserID: "u1", Filename: "a.csv", Delimiter: ";", Outcomes: "[]"}
		if err := CreateImportRun(ctx, db, rec, time.Hour); err != nil {
			t.Fatalf("run %d without key: %v", i, err)
		}
	}
}

func TestGetImportRunAndPurge(t *testing.T) {
	db := newTestDB(t, &domain.ImportRun{})
	ctx := context.Background()

	rec := &domain.ImportRun{UserID: "u1", Filename: "a.csv", Delimiter: ";", Outcomes: "[]"}
	if err := CreateImportRun(ctx, db, rec, time.Minute); err != nil {
		t.Fatalf("CreateImportRun: %v", err)
	}
	if got, err := GetImportRun(ctx, db, rec.ID); err != nil || got.Filename != "a.csv" {
		t.Fatalf("GetImportRun: %+v err=%v", got, err)
	}

	n, err := DeleteExpiredImportRuns(ctx, db, time.Now().UTC())
	if err != nil || n != 0 {
		t.Fatalf("nothing should be purged yet: n=%d err=%v", n, err)
	}
	n, err = DeleteExpiredImportRuns(ctx, db, time.Now().UTC().Add(2*time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("expected one purged run: n=%d err=%v", n, err)
	}
	if _, err := GetImportRun(ctx, db, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after purge, got %v", err)
	}
}
