package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Admin session & auth errors
// 12000-12999: Past-question module errors
// 13000-13999: Event module errors
// 14000-14999: Storage & blob errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004
	Forbidden           ErrorCode = 10005
	ServiceUnavailable  ErrorCode = 10006
	Timeout             ErrorCode = 10007

	// Database errors (10100-10199)
	DatabaseError       ErrorCode = 10100
	RecordNotFound      ErrorCode = 10101
	DatabaseUnreachable ErrorCode = 10102

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	RequiredFieldEmpty ErrorCode = 10302

	// ========== Admin Session & Auth Errors (11000-11999) ==========

	InvalidCredentials ErrorCode = 11000
	TokenExpired       ErrorCode = 11001
	TokenInvalid       ErrorCode = 11002
	APIKeyInvalid      ErrorCode = 11003

	// ========== Past-Question Module Errors (12000-12999) ==========

	PastQuestionNotFound     ErrorCode = 12000
	PastQuestionCreateFailed ErrorCode = 12001
	PastQuestionDeleteFailed ErrorCode = 12002
	FileRequired             ErrorCode = 12100
	FileTypeNotAllowed       ErrorCode = 12101
	FileTooLarge             ErrorCode = 12102

	// ========== Event Module Errors (13000-13999) ==========

	EventNotFound     ErrorCode = 13000
	EventCreateFailed ErrorCode = 13001
	EventUpdateFailed ErrorCode = 13002
	EventDeleteFailed ErrorCode = 13003
	ImageRequired     ErrorCode = 13100
	ImageUploadFailed ErrorCode = 13101

	// ========== Storage & Blob Errors (14000-14999) ==========

	BlobNotFound         ErrorCode = 14000
	BlobUploadFailed     ErrorCode = 14001
	StorageMisconfigured ErrorCode = 14100
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",
	Forbidden:           "Access forbidden",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Database
	DatabaseError:       "Database operation failed",
	RecordNotFound:      "Record not found in database",
	DatabaseUnreachable: "Database is unreachable",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	RequiredFieldEmpty: "Required field is empty",

	// Admin session & auth
	InvalidCredentials: "Invalid password",
	TokenExpired:       "Token has expired",
	TokenInvalid:       "Invalid token",
	APIKeyInvalid:      "Invalid API key",

	// Past questions
	PastQuestionNotFound:     "Past question not found",
	PastQuestionCreateFailed: "Failed to create past question",
	PastQuestionDeleteFailed: "Failed to delete past question",
	FileRequired:             "File is required",
	FileTypeNotAllowed:       "Only PDF, Word, and image files are allowed",
	FileTooLarge:             "File is too large",

	// Events
	EventNotFound:     "Event not found",
	EventCreateFailed: "Failed to create event",
	EventUpdateFailed: "Failed to update event",
	EventDeleteFailed: "Failed to delete event",
	ImageRequired:     "Image is required",
	ImageUploadFailed: "Failed to upload image",

	// Storage
	BlobNotFound:         "Stored file not found",
	BlobUploadFailed:     "Failed to store file",
	StorageMisconfigured: "Storage backend is misconfigured",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c >= 11000 && c < 12000: // Session & auth errors
		return 401
	case c == Unauthorized:
		return 401
	case c == Forbidden:
		return 403
	case c == NotFound, c == RecordNotFound,
		c == PastQuestionNotFound, c == EventNotFound, c == BlobNotFound:
		return 404
	case c == ServiceUnavailable, c == DatabaseUnreachable:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams,
		c == FileRequired, c == FileTypeNotAllowed, c == FileTooLarge,
		c == ImageRequired:
		return 400
	default:
		// StorageMisconfigured and friends indicate deployment errors.
		return 500
	}
}
