package services

// ErrorKind classifies authentication failures. Handlers map kinds to HTTP
// statuses; the messages are already safe to show to callers.
type ErrorKind string

const (
	KindInvalidIdentifier     ErrorKind = "invalid_identifier"
	KindAlreadyRegistered     ErrorKind = "already_registered"
	KindInvalidOrExpiredOtp   ErrorKind = "invalid_or_expired_otp"
	KindWeakPassword          ErrorKind = "weak_password"
	KindMissingInput          ErrorKind = "missing_input"
	KindAccountCreationFailed ErrorKind = "account_creation_failed"
	KindInvalidCredentials    ErrorKind = "invalid_credentials"
	KindAccountNotVerified    ErrorKind = "account_not_verified"
	KindStorageUnavailable    ErrorKind = "storage_unavailable"
)

type AuthError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.cause
}

func authErr(kind ErrorKind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

func wrapErr(kind ErrorKind, message string, cause error) *AuthError {
	return &AuthError{Kind: kind, Message: message, cause: cause}
}
