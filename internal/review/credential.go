package review

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialInfo describes the minted service credential for display.
// The backend signs its tokens; verification happens there, so the claims
// are only inspected, never trusted.
type CredentialInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectCredential parses the minted JWT without verifying its signature.
// Returns ok=false for anything that is not a well-formed JWT.
func InspectCredential(token string) (CredentialInfo, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return CredentialInfo{}, false
	}

	var info CredentialInfo
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}
