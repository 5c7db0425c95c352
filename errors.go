package panels

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPanel is returned when a PanelID has no registered Definition.
	ErrUnknownPanel = errors.New("panels: unknown panel")
	// ErrUnknownLayer is returned for LayerNone or an out-of-range LayerKind.
	ErrUnknownLayer = errors.New("panels: unknown layer")
	// ErrDuplicatePanel is returned when opening the panel already on top of
	// its layer. The open is a no-op.
	ErrDuplicatePanel = errors.New("panels: panel already open on top of its layer")
	// ErrEmptyStack is returned when closing a layer with nothing open.
	ErrEmptyStack = errors.New("panels: nothing open on layer")
	// ErrPanelLoadFailed matches every *PanelLoadError.
	ErrPanelLoadFailed = errors.New("panels: panel load failed")
	// ErrAssetNotFound is returned by loaders for unknown addresses.
	ErrAssetNotFound = errors.New("panels: asset not found")
	// ErrLoadFailed is returned by loaders when an asset exists but cannot be
	// turned into a visual.
	ErrLoadFailed = errors.New("panels: asset load failed")
	// ErrNotInitialized is returned by Manager operations before Initialize.
	ErrNotInitialized = errors.New("panels: manager not initialized")
	// ErrAlreadyInitialized is returned by a second call to Initialize.
	ErrAlreadyInitialized = errors.New("panels: manager already initialized")
	// ErrInvalidDefinition is returned when registering a malformed Definition.
	ErrInvalidDefinition = errors.New("panels: invalid panel definition")
)

// PanelLoadError reports that a panel's visual could not be loaded. The panel
// is left Unloaded so a later Open retries.
type PanelLoadError struct {
	Panel   PanelID
	Name    string
	Address string
	Err     error
}

func (e *PanelLoadError) Error() string {
	return fmt.Sprintf("panels: load %s (%q): %v", e.Name, e.Address, e.Err)
}

func (e *PanelLoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPanelLoadFailed) true for every PanelLoadError.
func (e *PanelLoadError) Is(target error) bool {
	return target == ErrPanelLoadFailed
}
