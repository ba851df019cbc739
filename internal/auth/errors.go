package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken indicates the session token failed verification.
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrNotFound     = errors.New("auth: not found")
	ErrInvalidInput = errors.New("auth: invalid input")
)

// DenialCode identifies an expected, reportable authorization or business
// failure. Codes are stable API surface consumed by clients.
type DenialCode string

const (
	CodeForbidden          DenialCode = "FORBIDDEN"
	CodeUnauthorized       DenialCode = "UNAUTHORIZED"
	CodeUserNotFound       DenialCode = "USER_NOT_FOUND"
	CodeTeamNotFound       DenialCode = "TEAM_NOT_FOUND"
	CodeInvalidCredentials DenialCode = "INVALID_CREDENTIALS"
	CodeEmailTaken         DenialCode = "EMAIL_TAKEN"
	CodeSignUpReqNotFound  DenialCode = "SIGNUP_REQUEST_NOT_FOUND"
	CodeTooManyRequests    DenialCode = "TOO_MANY_REQUESTS"
	CodeInvalidOTP         DenialCode = "INVALID_OTP"
	CodeOAuthFailed        DenialCode = "GOOGLE_OAUTH_FAILED"
	CodeSlugAlreadyInUse   DenialCode = "SLUG_ALREADY_IN_USE"
	CodeSlugNotFound       DenialCode = "SLUG_NOT_FOUND"
	CodeBlogNotFound       DenialCode = "BLOG_NOT_FOUND"
	CodeProjectNotFound    DenialCode = "PROJECT_NOT_FOUND"
)

// Denial is the structured outcome of a failed service-level check. It is an
// ordinary error value the caller must branch on; it is never used for
// infrastructure faults, which propagate as plain errors.
type Denial struct {
	Code    DenialCode
	Message string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Deny constructs a Denial.
func Deny(code DenialCode, message string) *Denial {
	return &Denial{Code: code, Message: message}
}

// AsDenial unwraps err into a Denial if it is one.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
