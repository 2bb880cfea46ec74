package gecco

import (
	"errors"

	"github.com/andy-wagner/gecco/types"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("gecco: invalid configuration")

	// ErrModuleRequired is returned by Run when no module is registered.
	ErrModuleRequired = errors.New("gecco: at least one module must be registered")

	// ErrDuplicateModule is returned by Register for an already-registered
	// module ID.
	ErrDuplicateModule = errors.New("gecco: duplicate module id")

	// ErrModuleLocality is returned by Register when a module's locality
	// flag contradicts its endpoint list: local modules must have no
	// endpoints, remote modules at least one.
	ErrModuleLocality = errors.New("gecco: module locality does not match its endpoints")

	// ErrRunInProgress is returned by Run while another run is active on
	// the same corrector.
	ErrRunInProgress = errors.New("gecco: run already in progress")

	// ErrDocumentRequired is returned by Run for a nil document.
	ErrDocumentRequired = errors.New("gecco: document is required")
)

// ErrNoServerAvailable is re-exported from types for callers inspecting
// degraded-selection errors reported through hooks.
var ErrNoServerAvailable = types.ErrNoServerAvailable
