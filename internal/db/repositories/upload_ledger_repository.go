package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"koomy/portal/internal/constants"
	gormModels "koomy/portal/internal/models/gorm"
)

var ErrAttemptNotFound = errors.New("upload attempt not found")

// OrphanUpload is a row of the orphan report
type OrphanUpload struct {
	ID        string    `db:"id" json:"id"`
	Kind      string    `db:"kind" json:"kind"`
	Folder    string    `db:"folder" json:"folder"`
	UploadURL string    `db:"upload_url" json:"uploadUrl"`
	Stage     string    `db:"stage" json:"stage"`
	ErrorCode string    `db:"error_code" json:"errorCode"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UploadLedgerRepository records every upload attempt and reports slots that
// were issued but never finalized
type UploadLedgerRepository struct {
	orm *gorm.DB
	sql *sqlx.DB
}

func NewUploadLedgerRepository(orm *gorm.DB, sql *sqlx.DB) *UploadLedgerRepository {
	return &UploadLedgerRepository{orm: orm, sql: sql}
}

// Begin records a new attempt in the requested stage
func (r *UploadLedgerRepository) Begin(ctx context.Context, attempt *gormModels.UploadAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	attempt.Stage = gormModels.UploadStageRequested
	if err := r.orm.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to record upload attempt: %w", err)
	}
	return nil
}

func (r *UploadLedgerRepository) update(ctx context.Context, id string, fields map[string]any) error {
	res := r.orm.WithContext(ctx).
		Model(&gormModels.UploadAttempt{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update upload attempt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

// SlotIssued stores the presigned URL handed out for the attempt
func (r *UploadLedgerRepository) SlotIssued(ctx context.Context, id, uploadURL string) error {
	return r.update(ctx, id, map[string]any{"upload_url": uploadURL})
}

func (r *UploadLedgerRepository) MarkUploaded(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]any{"stage": gormModels.UploadStageUploaded})
}

func (r *UploadLedgerRepository) MarkFinalized(ctx context.Context, id, objectPath string) error {
	return r.update(ctx, id, map[string]any{
		"stage":        gormModels.UploadStageFinalized,
		"object_path":  objectPath,
		"finalized_at": time.Now(),
	})
}

func (r *UploadLedgerRepository) MarkFailed(ctx context.Context, id, code string) error {
	return r.update(ctx, id, map[string]any{
		"stage":      gormModels.UploadStageFailed,
		"error_code": code,
	})
}

func (r *UploadLedgerRepository) Get(ctx context.Context, id string) (*gormModels.UploadAttempt, error) {
	var attempt gormModels.UploadAttempt
	err := r.orm.WithContext(ctx).Where("id = ?", id).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to fetch upload attempt: %w", err)
	}
	return &attempt, nil
}

// ListOrphans returns attempts holding a slot that stayed unfinalized past olderThan
func (r *UploadLedgerRepository) ListOrphans(ctx context.Context, olderThan time.Duration) ([]OrphanUpload, error) {
	cutoff := time.Now().Add(-olderThan)
	var rows []OrphanUpload
	if err := r.sql.SelectContext(ctx, &rows, r.sql.Rebind(constants.ListOrphanUploads), cutoff); err != nil {
		return nil, fmt.Errorf("failed to list orphan uploads: %w", err)
	}
	return rows, nil
}

func (r *UploadLedgerRepository) CountOrphans(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	var n int
	if err := r.sql.GetContext(ctx, &n, r.sql.Rebind(constants.CountOrphanUploads), cutoff); err != nil {
		return 0, fmt.Errorf("failed to count orphan uploads: %w", err)
	}
	return n, nil
}
