package model

import (
	"errors"
	"fmt"
)

// Error taxonomy of a resolution pass. Errors returned by the engine wrap one
// of these so callers can classify them with errors.Is.
var (
	// ErrConfiguration marks a declaration defect: unknown column, target or
	// dataset, or a malformed dotted path.
	ErrConfiguration = errors.New("configuration error")
	// ErrLoader marks a failure raised by a dataset loader.
	ErrLoader = errors.New("loader error")
	// ErrInteraction marks a selection payload a target could not interpret.
	ErrInteraction = errors.New("interaction error")
	// ErrRender marks a failure raised by a rendering factory.
	ErrRender = errors.New("render error")
)

// ErrorKind classifies err into one of the taxonomy names. Unclassified
// errors are "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrLoader):
		return "loader"
	case errors.Is(err, ErrInteraction):
		return "interaction"
	case errors.Is(err, ErrRender):
		return "render"
	}
	return "internal"
}

// ErrorMarker replaces the artifact of a target whose resolution failed, so
// the caller can render a per-component error state.
type ErrorMarker struct {
	Target  string `json:"target"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewErrorMarker builds the marker for a failed target.
func NewErrorMarker(target string, err error) *ErrorMarker {
	return &ErrorMarker{Target: target, Kind: ErrorKind(err), Message: err.Error()}
}

func (m *ErrorMarker) Error() string {
	return fmt.Sprintf("target %s: %s", m.Target, m.Message)
}
