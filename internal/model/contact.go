package model

import (
	"errors"
	"strings"
)

var (
	ErrEmptyNumber  = errors.New("empty number")
	ErrEmptyMessage = errors.New("empty message")
)

// Contact is one row of the loaded dataset: a phone-number-like target and
// the message body to deliver to it. Read-only once loaded.
type Contact struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

// Validate checks the one invariant a contact carries: both fields are
// non-empty after trimming.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Number) == "" {
		return ErrEmptyNumber
	}
	if strings.TrimSpace(c.Message) == "" {
		return ErrEmptyMessage
	}
	return nil
}
