package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"koomy/portal/internal/auth"
	"koomy/portal/internal/common"
	"koomy/portal/internal/constants"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/services"
)

// multipart framing allowance on top of the file itself
const multipartOverhead = 1 << 20

// UploadHandler handles POST /uploads/{kind}
//
// @Summary      Upload an image
// @Description  Validates the file, then runs the slot, PUT and finalize steps against the Koomy API
// @Tags         Uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind    path      string  true   "image or logo"
// @Param        file    formData  file    true   "Image file"
// @Param        folder  formData  string  false  "Target folder"
// @Success      201  {object}  dtos.APIResponse
// @Failure      400  {object}  dtos.APIResponse
// @Failure      502  {object}  dtos.APIResponse
// @Router       /uploads/{kind} [post]
func UploadHandler(svc *services.UploadService, maxBytes int64) http.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = constants.MaxUploadBytes
	}
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		kind := constants.UploadKind(chi.URLParam(r, "kind"))
		if !kind.Valid() {
			common.RespondCode(w, initTime, constants.ErrCodeInvalidKind, "", http.StatusBadRequest)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		if err := r.ParseMultipartForm(maxBytes + multipartOverhead); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || r.ContentLength > maxBytes+multipartOverhead {
				common.RespondCode(w, initTime, constants.ErrCodeFileTooLarge, "", http.StatusBadRequest)
				return
			}
			respondValidation(w, initTime, "Expected a multipart form with a file field")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			respondValidation(w, initTime, "Missing file field")
			return
		}
		defer file.Close()

		// one byte past the limit is enough for validation to reject it
		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			respondValidation(w, initTime, "Could not read the uploaded file")
			return
		}

		req := &services.UploadRequest{
			Kind:        kind,
			Folder:      r.FormValue("folder"),
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
		if sess := auth.GetSessionData(r.Context()); sess != nil {
			req.SessionID = sess.SessionID
			if sess.State.User != nil {
				req.UserID = sess.State.User.ID
			}
		}
		req.OnComplete = func(objectPath string) {
			logging.Info("Upload finalized", "kind", kind, "object_path", objectPath, "session_id", req.SessionID)
		}

		res, err := svc.Upload(upstreamContext(r), req)
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Upload complete", res, http.StatusCreated)
	}
}
