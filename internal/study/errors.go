// Package study implements quiz generation, mastery tracking and progress statistics.
package study

import "errors"

// Core errors
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidArgument  = errors.New("invalid argument")
)
