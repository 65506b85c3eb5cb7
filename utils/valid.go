// utils/valid.go
package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptRegex = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneStrip  = regexp.MustCompile(`[^\d+]`)
)

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	// strip scripts before escaping, afterwards the tags no longer match
	input = scriptRegex.ReplaceAllString(input, "")
	input = html.EscapeString(input)

	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' {
			return -1
		}
		return r
	}, input)

	return input
}

// SanitizeEmail sanitizes and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}

	return email, nil
}

// SanitizePhone sanitizes and validates a phone number
func SanitizePhone(phone string) (string, error) {
	// phone is optional
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}

	phone = phoneStrip.ReplaceAllString(phone, "")
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	if len(phone) < 8 || len(phone) > 16 {
		return "", errors.New("invalid phone number length")
	}

	return phone, nil
}

// SanitizeStringArray sanitizes an array of strings, dropping empties
func SanitizeStringArray(inputs []string) []string {
	sanitized := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if s := SanitizeInput(input); s != "" {
			sanitized = append(sanitized, s)
		}
	}
	return sanitized
}
