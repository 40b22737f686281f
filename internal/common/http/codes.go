package http

const (
	CodeUnknown              = "UNKNOWN"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON          = "INVALID_JSON"
	CodeBodyTooLarge         = "BODY_TOO_LARGE"
	CodeMissingAuthorization = "MISSING_AUTHORIZATION"
)
