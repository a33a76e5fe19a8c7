package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validate validates the Config using struct tags and cross-field
// rules. Returns an error with actionable, aggregated messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateTimeouts(); err != nil {
		return err
	}

	return nil
}

// validateTimeouts cross-checks that Search.Timeout, when set, parses
// as a duration: the field carries no "omitempty,duration" struct tag
// because an empty value (no bound) is itself valid and must not be
// rejected by a bare "duration" tag.
func (c *Config) validateTimeouts() error {
	if c.Search.Timeout == "" {
		return nil
	}
	if _, err := time.ParseDuration(c.Search.Timeout); err != nil {
		return fmt.Errorf("search.timeout: %w", err)
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors into a
// single aggregated, user-friendly message.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a
// single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
