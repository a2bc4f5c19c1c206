package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"koomy/portal/internal/common"
	"koomy/portal/internal/constants"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/metrics"
	"koomy/portal/internal/models/dtos"
	gormModels "koomy/portal/internal/models/gorm"
)

// UploadAPI is the three-step presigned upload protocol
type UploadAPI interface {
	RequestUploadSlot(ctx context.Context, kind constants.UploadKind, folder string) (*dtos.UploadSlotResponse, error)
	PutObject(ctx context.Context, uploadURL, contentType string, body []byte) error
	FinalizeUpload(ctx context.Context, kind constants.UploadKind, uploadURL string) (*dtos.FinalizeUploadResponse, error)
}

// UploadLedger records the progress of each attempt
type UploadLedger interface {
	Begin(ctx context.Context, attempt *gormModels.UploadAttempt) error
	SlotIssued(ctx context.Context, id, uploadURL string) error
	MarkUploaded(ctx context.Context, id string) error
	MarkFinalized(ctx context.Context, id, objectPath string) error
	MarkFailed(ctx context.Context, id, code string) error
}

// UploadError is a user-facing upload failure
type UploadError struct {
	Code    string
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether the failure happened before any network call
func (e *UploadError) IsValidation() bool {
	switch e.Code {
	case constants.ErrCodeInvalidFileType, constants.ErrCodeFileTooLarge, constants.ErrCodeInvalidKind:
		return true
	}
	return false
}

func newUploadError(code string, err error) *UploadError {
	return &UploadError{Code: code, Message: constants.GetErrorMessage(code), Err: err}
}

// UploadRequest is one file to send. Data is released when the upload fails.
type UploadRequest struct {
	Kind        constants.UploadKind
	Folder      string
	FileName    string
	ContentType string
	Data        []byte
	SessionID   string
	UserID      string
	// OnComplete runs only after a successful finalize
	OnComplete func(objectPath string)
}

type UploadResult struct {
	AttemptID  string `json:"attemptId,omitempty"`
	ObjectPath string `json:"objectPath"`
}

type UploadService struct {
	api      UploadAPI
	ledger   UploadLedger
	maxBytes int64
	metrics  *metrics.MetricsRegistry
}

// NewUploadService builds the upload flow. A nil ledger skips attempt recording.
func NewUploadService(api UploadAPI, ledger UploadLedger, maxBytes int64, m *metrics.MetricsRegistry) *UploadService {
	if maxBytes <= 0 {
		maxBytes = constants.MaxUploadBytes
	}
	return &UploadService{api: api, ledger: ledger, maxBytes: maxBytes, metrics: m}
}

// Validate checks the request locally
func (s *UploadService) Validate(kind constants.UploadKind, contentType string, size int64) error {
	if !kind.Valid() {
		return newUploadError(constants.ErrCodeInvalidKind, nil)
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return newUploadError(constants.ErrCodeInvalidFileType, nil)
	}
	if size > s.maxBytes {
		return newUploadError(constants.ErrCodeFileTooLarge, nil)
	}
	return nil
}

// Upload validates req, then requests a slot, PUTs the bytes and finalizes.
// Any failing step aborts the flow.
func (s *UploadService) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if err := s.Validate(req.Kind, req.ContentType, int64(len(req.Data))); err != nil {
		req.Data = nil
		return nil, err
	}

	attempt := &gormModels.UploadAttempt{
		SessionID:   req.SessionID,
		UserID:      req.UserID,
		Kind:        string(req.Kind),
		Folder:      req.Folder,
		FileName:    common.SanitizeFileName(req.FileName),
		ContentType: req.ContentType,
		Size:        int64(len(req.Data)),
	}
	s.record(func() error { return s.ledger.Begin(ctx, attempt) })

	fail := func(code string, err error) (*UploadResult, error) {
		req.Data = nil
		s.record(func() error { return s.ledger.MarkFailed(context.WithoutCancel(ctx), attempt.ID, code) })
		s.metrics.Upload(string(req.Kind), string(gormModels.UploadStageFailed))
		logging.Warn("Upload failed", "attempt_id", attempt.ID, "kind", req.Kind, "code", code, "error", err)
		return nil, newUploadError(code, err)
	}

	slot, err := s.api.RequestUploadSlot(ctx, req.Kind, req.Folder)
	if err != nil {
		return fail(constants.ErrCodeUploadSlot, err)
	}
	s.record(func() error { return s.ledger.SlotIssued(ctx, attempt.ID, slot.UploadURL) })

	if err := s.api.PutObject(ctx, slot.UploadURL, req.ContentType, req.Data); err != nil {
		return fail(constants.ErrCodeUploadPut, err)
	}
	s.record(func() error { return s.ledger.MarkUploaded(ctx, attempt.ID) })

	fin, err := s.api.FinalizeUpload(ctx, req.Kind, slot.UploadURL)
	if err != nil {
		return fail(constants.ErrCodeUploadFinalize, err)
	}
	s.record(func() error { return s.ledger.MarkFinalized(ctx, attempt.ID, fin.ObjectPath) })
	s.metrics.Upload(string(req.Kind), string(gormModels.UploadStageFinalized))

	if req.OnComplete != nil {
		req.OnComplete(fin.ObjectPath)
	}
	return &UploadResult{AttemptID: attempt.ID, ObjectPath: fin.ObjectPath}, nil
}

// record writes to the ledger when one is configured. Ledger failures are
// logged and never abort an upload.
func (s *UploadService) record(fn func() error) {
	if s.ledger == nil {
		return
	}
	if err := fn(); err != nil {
		logging.Error("Upload ledger write failed", "error", err)
	}
}

// AsUploadError unwraps err into an *UploadError
func AsUploadError(err error) (*UploadError, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
