package module

import "errors"

var (
	// ErrModelPathRequired is returned when a lexicon config names no model.
	ErrModelPathRequired = errors.New("module: model path is required")

	// ErrInvalidModel is returned when a lexicon model line cannot be
	// parsed.
	ErrInvalidModel = errors.New("module: invalid lexicon model")

	// ErrInvalidModuleConfig is returned when module config validation
	// fails.
	ErrInvalidModuleConfig = errors.New("module: invalid module config")
)
