package errors

// ErrorCode identifies an application error category in responses and logs
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_PERMISSION_DENIED ErrorCode = 1003
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1004
	ErrorCode_FORBIDDEN         ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN       ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED       ErrorCode = 2001
	ErrorCode_AUTH_INVALID_CREDENTIALS ErrorCode = 2002
	ErrorCode_AUTH_SESSION_EXPIRED     ErrorCode = 2003

	// Conversations
	ErrorCode_CONVERSATION_NOT_FOUND ErrorCode = 3000
	ErrorCode_UPLOAD_INVALID         ErrorCode = 3001
	ErrorCode_ROLE_REJECTED          ErrorCode = 3002

	// AI collaborators
	ErrorCode_AI_TRANSCRIPTION_FAILED ErrorCode = 4000
	ErrorCode_AI_ANALYSIS_FAILED      ErrorCode = 4001
	ErrorCode_AI_SERVICE_UNAVAILABLE  ErrorCode = 4002

	// Prompts
	ErrorCode_PROMPT_NOT_FOUND ErrorCode = 5000
	ErrorCode_PROMPT_INVALID   ErrorCode = 5001

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 6000
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 6001
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                  "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_CREDENTIALS:   "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_SESSION_EXPIRED:       "AUTH_SESSION_EXPIRED",
	ErrorCode_CONVERSATION_NOT_FOUND:     "CONVERSATION_NOT_FOUND",
	ErrorCode_UPLOAD_INVALID:             "UPLOAD_INVALID",
	ErrorCode_ROLE_REJECTED:              "ROLE_REJECTED",
	ErrorCode_AI_TRANSCRIPTION_FAILED:    "AI_TRANSCRIPTION_FAILED",
	ErrorCode_AI_ANALYSIS_FAILED:         "AI_ANALYSIS_FAILED",
	ErrorCode_AI_SERVICE_UNAVAILABLE:     "AI_SERVICE_UNAVAILABLE",
	ErrorCode_PROMPT_NOT_FOUND:           "PROMPT_NOT_FOUND",
	ErrorCode_PROMPT_INVALID:             "PROMPT_INVALID",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
