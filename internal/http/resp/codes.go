package resp

const (
	CodeOK            = "ok"
	CodeQueued        = "queued"
	CodeBadRequest    = "bad_request"
	CodeNotFound      = "not_found"
	CodeInternalError = "internal_error"
)
