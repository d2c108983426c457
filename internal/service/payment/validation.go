package payment

import (
	"fmt"
	"regexp"
	"strings"
)

const clientSecretSeparator = "_secret_"

var intentIDPattern = regexp.MustCompile(`^pi_[A-Za-z0-9]+$`)

// ValidateClientSecret проверяет формат client secret до любого сетевого вызова
// Формат: pi_<id>_secret_<secret>
func ValidateClientSecret(clientSecret string) error {
	if strings.TrimSpace(clientSecret) == "" {
		return fail(fmt.Errorf("%w: client secret is missing", ErrInvalidClientSecret), msgRefreshAndRetry, nil)
	}

	idx := strings.Index(clientSecret, clientSecretSeparator)
	if idx < 0 {
		return fail(fmt.Errorf("%w: separator %q not found", ErrInvalidClientSecret, clientSecretSeparator), msgRefreshAndRetry, nil)
	}

	intentID := clientSecret[:idx]
	if !intentIDPattern.MatchString(intentID) {
		return fail(fmt.Errorf("%w: intent id %q has unexpected format", ErrInvalidClientSecret, intentID), msgRefreshAndRetry, nil)
	}

	if idx+len(clientSecretSeparator) >= len(clientSecret) {
		return fail(fmt.Errorf("%w: secret part is empty", ErrInvalidClientSecret), msgRefreshAndRetry, nil)
	}

	return nil
}

// IntentIDFromClientSecret возвращает id intent из client secret
func IntentIDFromClientSecret(clientSecret string) (string, error) {
	if err := ValidateClientSecret(clientSecret); err != nil {
		return "", err
	}
	return clientSecret[:strings.Index(clientSecret, clientSecretSeparator)], nil
}
