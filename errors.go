package paintcore

import "errors"

// Common pipeline errors.
var (
	// ErrBackendFault indicates an unrecoverable device error from the
	// accelerated accumulator backend. The active stroke is discarded
	// and the session downgrades to the CPU backend.
	ErrBackendFault = errors.New("paintcore: accumulator backend fault")

	// ErrNoActiveStroke is returned when a stroke operation is invoked
	// with no stroke in progress. This is a programming error: callers
	// should treat it as loud in development and a safe no-op in
	// production paths.
	ErrNoActiveStroke = errors.New("paintcore: no active stroke")

	// ErrStrokeActive is returned when beginning a stroke while one is
	// already in progress.
	ErrStrokeActive = errors.New("paintcore: stroke already active")

	// ErrEpochReset indicates the native sample ring buffer wrapped or
	// was cleared, invalidating the caller's cursor.
	ErrEpochReset = errors.New("paintcore: ring epoch reset")

	// ErrLayerLocked is returned when the destination layer rejects
	// edits at stroke begin.
	ErrLayerLocked = errors.New("paintcore: destination layer is locked")

	// ErrLayerHidden is returned when the destination layer is not
	// visible at stroke begin.
	ErrLayerHidden = errors.New("paintcore: destination layer is hidden")
)
