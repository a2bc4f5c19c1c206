package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormModels "koomy/portal/internal/models/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) (*gorm.DB, *sqlx.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto migrate
	if err := db.AutoMigrate(&gormModels.UploadAttempt{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return db, sqlx.NewDb(sqlDB, "sqlite3")
}

func TestUploadLedger_Lifecycle(t *testing.T) {
	orm, sq := setupTestDB(t)
	repo := NewUploadLedgerRepository(orm, sq)
	ctx := context.Background()

	attempt := &gormModels.UploadAttempt{Kind: "logo", FileName: "logo.png", ContentType: "image/png", Size: 10}
	if err := repo.Begin(ctx, attempt); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if attempt.ID == "" {
		t.Fatal("Expected generated id")
	}

	if err := repo.SlotIssued(ctx, attempt.ID, "https://storage/put"); err != nil {
		t.Fatalf("SlotIssued failed: %v", err)
	}
	if err := repo.MarkUploaded(ctx, attempt.ID); err != nil {
		t.Fatalf("MarkUploaded failed: %v", err)
	}
	if err := repo.MarkFinalized(ctx, attempt.ID, "/objects/logo.png"); err != nil {
		t.Fatalf("MarkFinalized failed: %v", err)
	}

	got, err := repo.Get(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Stage != gormModels.UploadStageFinalized || got.ObjectPath != "/objects/logo.png" || got.FinalizedAt == nil {
		t.Errorf("Unexpected attempt %+v", got)
	}
}

func TestUploadLedger_UnknownAttempt(t *testing.T) {
	orm, sq := setupTestDB(t)
	repo := NewUploadLedgerRepository(orm, sq)

	if err := repo.MarkFailed(context.Background(), "nope", "X"); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("Expected ErrAttemptNotFound, got %v", err)
	}
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("Expected ErrAttemptNotFound, got %v", err)
	}
}

func TestUploadLedger_Orphans(t *testing.T) {
	orm, sq := setupTestDB(t)
	repo := NewUploadLedgerRepository(orm, sq)
	ctx := context.Background()
	old := time.Now().Add(-2 * time.Hour)

	seed := func(stage gormModels.UploadStage, uploadURL string, created time.Time) string {
		a := &gormModels.UploadAttempt{Kind: "image", UploadURL: uploadURL, CreatedAt: created}
		if err := repo.Begin(ctx, a); err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		if stage != gormModels.UploadStageRequested {
			orm.Model(&gormModels.UploadAttempt{}).Where("id = ?", a.ID).Update("stage", stage)
		}
		return a.ID
	}

	orphanUploaded := seed(gormModels.UploadStageUploaded, "https://storage/a", old)
	orphanFailed := seed(gormModels.UploadStageFailed, "https://storage/b", old)
	seed(gormModels.UploadStageRequested, "", old)                        // no slot issued
	seed(gormModels.UploadStageUploaded, "https://storage/c", time.Now()) // too recent
	finalized := seed(gormModels.UploadStageRequested, "https://storage/d", old)
	repo.MarkFinalized(ctx, finalized, "/objects/d")

	orphans, err := repo.ListOrphans(ctx, time.Hour)
	if err != nil {
		t.Fatalf("ListOrphans failed: %v", err)
	}
	if len(orphans) != 2 {
		t.Fatalf("Expected 2 orphans, got %d: %+v", len(orphans), orphans)
	}
	ids := map[string]bool{orphans[0].ID: true, orphans[1].ID: true}
	if !ids[orphanUploaded] || !ids[orphanFailed] {
		t.Errorf("Unexpected orphan set %+v", orphans)
	}

	n, err := repo.CountOrphans(ctx, time.Hour)
	if err != nil || n != 2 {
		t.Errorf("Expected count 2, got %d (%v)", n, err)
	}
}
