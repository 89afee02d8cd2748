package security

import (
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret creates a new TOTP secret for a user account.
func GenerateTOTPSecret(accountEmail string) (secret, otpauthURL string, err error) {
	key, errGenerate := totp.Generate(totp.GenerateOpts{
		Issuer:      "Crystal Grimoire",
		AccountName: accountEmail,
	})
	if errGenerate != nil {
		return "", "", fmt.Errorf("security: generate totp: %w", errGenerate)
	}
	return key.Secret(), key.URL(), nil
}

// VerifyTOTP validates a one-time code against a stored secret.
func VerifyTOTP(secret, code string) bool {
	secret = strings.TrimSpace(secret)
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}
