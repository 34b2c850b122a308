package apierror

// ErrorCode is a machine-readable error identifier for frontend translation
type ErrorCode string

// Auth errors (1xxx)
const (
	ErrCodeUnauthorized       ErrorCode = "AUTH_UNAUTHORIZED"        // 1001
	ErrCodeInvalidToken       ErrorCode = "AUTH_INVALID_TOKEN"       // 1002
	ErrCodeTokenExpired       ErrorCode = "AUTH_TOKEN_EXPIRED"       // 1003
	ErrCodeInvalidCredentials ErrorCode = "AUTH_INVALID_CREDENTIALS" // 1004
	ErrCodeSessionExpired     ErrorCode = "AUTH_SESSION_EXPIRED"     // 1005
)

// User errors (2xxx)
const (
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"         // 2001
	ErrCodeEmailRequired   ErrorCode = "USER_EMAIL_REQUIRED"    // 2002
	ErrCodeEmailInvalid    ErrorCode = "USER_EMAIL_INVALID"     // 2003
	ErrCodeEmailTaken      ErrorCode = "USER_EMAIL_TAKEN"       // 2004
	ErrCodePasswordInvalid ErrorCode = "USER_PASSWORD_INVALID"  // 2005
	ErrCodePasswordTooWeak ErrorCode = "USER_PASSWORD_TOO_WEAK" // 2006
)

// Library errors (3xxx)
const (
	ErrCodeLibraryNotFound     ErrorCode = "LIBRARY_NOT_FOUND"      // 3001
	ErrCodeLibraryPathTaken    ErrorCode = "LIBRARY_PATH_TAKEN"     // 3002
	ErrCodeLibraryAccessDenied ErrorCode = "LIBRARY_ACCESS_DENIED"  // 3003
)

// Collection errors (4xxx)
const (
	ErrCodeCollectionNotFound    ErrorCode = "COLLECTION_NOT_FOUND"     // 4001
	ErrCodeCollectionPathTaken   ErrorCode = "COLLECTION_PATH_TAKEN"    // 4002
	ErrCodeCollectionDeleted     ErrorCode = "COLLECTION_DELETED"       // 4003
	ErrCodeCollectionInvalidSort ErrorCode = "COLLECTION_INVALID_SORT"  // 4004
)

// Image errors (5xxx)
const (
	ErrCodeImageNotFound       ErrorCode = "IMAGE_NOT_FOUND"        // 5001
	ErrCodeImageCorrupt        ErrorCode = "IMAGE_CORRUPT"          // 5002
	ErrCodeImageFormatInvalid  ErrorCode = "IMAGE_FORMAT_INVALID"   // 5003
	ErrCodeVideoToolUnavailable ErrorCode = "IMAGE_VIDEO_TOOL_UNAVAILABLE" // 5004
)

// Background job errors (6xxx)
const (
	ErrCodeJobNotFound        ErrorCode = "JOB_NOT_FOUND"         // 6001
	ErrCodeJobTypeUnknown     ErrorCode = "JOB_TYPE_UNKNOWN"      // 6002
	ErrCodeJobAlreadyTerminal ErrorCode = "JOB_ALREADY_TERMINAL"  // 6003
	ErrCodeJobQueueFull       ErrorCode = "JOB_QUEUE_FULL"        // 6004
)

// Cache folder errors (7xxx)
const (
	ErrCodeCacheFolderNotFound  ErrorCode = "CACHE_FOLDER_NOT_FOUND"  // 7001
	ErrCodeCacheFolderPathTaken ErrorCode = "CACHE_FOLDER_PATH_TAKEN" // 7002
	ErrCodeCacheFolderFull      ErrorCode = "CACHE_FOLDER_FULL"       // 7003
)

// Index engine errors (8xxx)
const (
	ErrCodeIndexNotReady   ErrorCode = "INDEX_NOT_READY"   // 8001
	ErrCodeIndexRebuilding ErrorCode = "INDEX_REBUILDING"  // 8002
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE" // 8003
)

// Validation errors (90xxx)
const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"        // 90001
	ErrCodeInvalidID        ErrorCode = "VALIDATION_INVALID_ID"    // 90002
	ErrCodeRequiredField    ErrorCode = "VALIDATION_REQUIRED_FIELD" // 90003
	ErrCodeInvalidFormat    ErrorCode = "VALIDATION_INVALID_FORMAT" // 90004
)

// System errors (99xxx)
const (
	ErrCodeInternalError      ErrorCode = "SYSTEM_INTERNAL_ERROR"      // 99001
	ErrCodeStoreUnavailable   ErrorCode = "SYSTEM_STORE_UNAVAILABLE"   // 99002
	ErrCodeBrokerUnavailable  ErrorCode = "SYSTEM_BROKER_UNAVAILABLE"  // 99003
	ErrCodeServiceUnavailable ErrorCode = "SYSTEM_SERVICE_UNAVAILABLE" // 99004
)
