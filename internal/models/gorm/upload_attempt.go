package gorm

import "time"

// UploadStage tracks how far an upload attempt progressed
type UploadStage string

const (
	UploadStageRequested UploadStage = "requested"
	UploadStageUploaded  UploadStage = "uploaded"
	UploadStageFinalized UploadStage = "finalized"
	UploadStageFailed    UploadStage = "failed"
)

type UploadAttempt struct {
	ID          string      `gorm:"column:id;primaryKey;type:varchar(36)" db:"id"`
	SessionID   string      `gorm:"column:session_id;index" db:"session_id"`
	UserID      string      `gorm:"column:user_id;index" db:"user_id"`
	Kind        string      `gorm:"column:kind" db:"kind"`
	Folder      string      `gorm:"column:folder" db:"folder"`
	FileName    string      `gorm:"column:file_name" db:"file_name"`
	ContentType string      `gorm:"column:content_type" db:"content_type"`
	Size        int64       `gorm:"column:size" db:"size"`
	UploadURL   string      `gorm:"column:upload_url" db:"upload_url"`
	ObjectPath  string      `gorm:"column:object_path" db:"object_path"`
	Stage       UploadStage `gorm:"column:stage;index" db:"stage"`
	ErrorCode   string      `gorm:"column:error_code" db:"error_code"`
	FinalizedAt *time.Time  `gorm:"column:finalized_at" db:"finalized_at"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime;index" db:"created_at"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime" db:"updated_at"`
}

// TableName specifies the table name for GORM
func (UploadAttempt) TableName() string {
	return "upload_attempts"
}
