package constants

const (
	// ListOrphanUploads selects attempts whose slot was issued but never finalized
	ListOrphanUploads = `
	SELECT id, kind, folder, upload_url, stage, error_code, created_at, updated_at
	FROM upload_attempts
	WHERE stage IN ('requested', 'uploaded', 'failed')
	  AND upload_url <> ''
	  AND finalized_at IS NULL
	  AND created_at < ?
	ORDER BY created_at ASC
	`

	CountOrphanUploads = `
	SELECT COUNT(*) FROM upload_attempts
	WHERE stage IN ('requested', 'uploaded', 'failed')
	  AND upload_url <> ''
	  AND finalized_at IS NULL
	  AND created_at < ?
	`
)
