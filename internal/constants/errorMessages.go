package constants

// Error codes surfaced by the portal
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidFileType = "INVALID_FILE_TYPE"
	ErrCodeFileTooLarge    = "FILE_TOO_LARGE"
	ErrCodeInvalidKind     = "INVALID_UPLOAD_KIND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodePlatformOnly    = "PLATFORM_ADMIN_REQUIRED"
	ErrCodeNotFound        = "RESOURCE_NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeNetworkError    = "NETWORK_ERROR"
	ErrCodeUpstreamError   = "UPSTREAM_ERROR"
	ErrCodeDecodeError     = "DECODE_ERROR"
	ErrCodeNoSession       = "NO_SESSION"
	ErrCodeNoCommunity     = "NO_ACTIVE_COMMUNITY"
	ErrCodeUploadSlot      = "UPLOAD_SLOT_FAILED"
	ErrCodeUploadPut       = "UPLOAD_PUT_FAILED"
	ErrCodeUploadFinalize  = "UPLOAD_FINALIZE_FAILED"
)

// ErrorMessages holds the user-facing text for each code
var ErrorMessages = map[string]string{
	ErrCodeValidation:      "The request is invalid",
	ErrCodeInvalidFileType: "Only image files can be uploaded",
	ErrCodeFileTooLarge:    "The file must not exceed 5 MB",
	ErrCodeInvalidKind:     "Unknown upload type",
	ErrCodeUnauthorized:    "Authentication required",
	ErrCodeForbidden:       "Community admin rights are required",
	ErrCodePlatformOnly:    "Platform administrator rights are required",
	ErrCodeNotFound:        "The requested resource was not found",
	ErrCodeRateLimited:     "Too many requests. Please try again later",
	ErrCodeNetworkError:    "Unable to reach the Koomy API",
	ErrCodeUpstreamError:   "An error occurred",
	ErrCodeDecodeError:     "The server returned an unexpected response",
	ErrCodeNoSession:       "You are not logged in",
	ErrCodeNoCommunity:     "Select a community first",
	ErrCodeUploadSlot:      "Could not prepare the upload",
	ErrCodeUploadPut:       "The file could not be sent",
	ErrCodeUploadFinalize:  "The upload could not be completed",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
