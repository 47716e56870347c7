package handlers

import (
	"fmt"
	"regexp"

	"boardserver/internal/domain"
)

var (
	loginIDPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{3,19}$`)
	passwordPattern = regexp.MustCompile(`^[\x21-\x7e]{8,72}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	telPattern      = regexp.MustCompile(`^[0-9]{2,3}-?[0-9]{3,4}-?[0-9]{4}$`)
	birthPattern    = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	genderPattern   = regexp.MustCompile(`^(male|female|other)$`)
)

func validateField(name, value string, pattern *regexp.Regexp) error {
	if !pattern.MatchString(value) {
		return fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, name)
	}
	return nil
}

func validateOptional(name, value string, pattern *regexp.Regexp) error {
	if value == "" {
		return nil
	}
	return validateField(name, value, pattern)
}
