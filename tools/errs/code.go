package errs

// Error codes carried on the wire. The ws `error` event and the HTTP
// surface both report these, so clients can distinguish failure classes
// without string matching.
const (
	ServerInternalError = 500

	AuthenticationError = 1101 // bad/missing/expired credential at connect time
	AuthorizationError  = 1102 // authenticated but not allowed to act
	RecordNotFoundError = 1103 // chat or message id does not resolve
	ValidationError     = 1104 // malformed or incomplete payload
	UpstreamError       = 1105 // blob storage or persistence failed

	TokenExpiredError = 1501
)

var (
	ErrInternalServer = NewCodeError(ServerInternalError, "server internal error")
	ErrAuthentication = NewCodeError(AuthenticationError, "authentication failed")
	ErrAuthorization  = NewCodeError(AuthorizationError, "no permission")
	ErrNotFound       = NewCodeError(RecordNotFoundError, "record not found")
	ErrValidation     = NewCodeError(ValidationError, "invalid argument")
	ErrUpstream       = NewCodeError(UpstreamError, "upstream service failed")
	ErrTokenExpired   = NewCodeError(TokenExpiredError, "token expired")
)
