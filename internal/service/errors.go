package service

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrTerminalStatus = errors.New("order status can no longer change")
	ErrInvalidPeriod  = errors.New("invalid dashboard period")
)

// Stage names the step of order creation that failed
type Stage string

const (
	StageValidation Stage = "validation"
	StagePricing    Stage = "pricing"
	StageCoupon     Stage = "coupon"
)

// StageError wraps a failure of order creation with the stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StageOf returns the stage of a StageError in err's chain
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
