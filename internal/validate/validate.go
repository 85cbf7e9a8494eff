// Package validate collects field-level validation messages.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error is returned when one or more fields fail validation.
type Error struct {
	Errors []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Collector accumulates validation messages in the order they are found.
type Collector struct {
	errs []string
}

// Addf records a formatted message.
func (c *Collector) Addf(format string, args ...interface{}) {
	c.errs = append(c.errs, fmt.Sprintf(format, args...))
}

// Required records a message if v is blank.
func (c *Collector) Required(field, v string) {
	if strings.TrimSpace(v) == "" {
		c.Addf("%s is required", field)
	}
}

// MaxLen records a message if v is longer than n characters.
func (c *Collector) MaxLen(field, v string, n int) {
	if utf8.RuneCountInString(v) > n {
		c.Addf("%s must be at most %d characters", field, n)
	}
}

// IntRange records a message if v is set and outside [min, max].
func (c *Collector) IntRange(field string, v *int, min, max int) {
	if v != nil && (*v < min || *v > max) {
		c.Addf("%s must be between %d and %d", field, min, max)
	}
}

// FloatRange records a message if v is set and outside [min, max].
func (c *Collector) FloatRange(field string, v *float64, min, max float64) {
	if v != nil && (*v < min || *v > max) {
		c.Addf("%s must be between %g and %g", field, min, max)
	}
}

// OneOf records a message if v is not one of allowed.
// Blank values are left to Required.
func (c *Collector) OneOf(field, v string, allowed ...string) {
	if v == "" {
		return
	}
	for _, a := range allowed {
		if v == a {
			return
		}
	}
	c.Addf("%s must be one of: %s", field, strings.Join(allowed, ", "))
}

// Err returns an *Error holding every message, or nil when there are none.
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &Error{Errors: append([]string(nil), c.errs...)}
}
