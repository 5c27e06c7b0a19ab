package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrToolLoop        = errors.New("tool round limit exceeded")
	ErrUnknownAgent    = errors.New("unknown agent kind")
)
