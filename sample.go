package paintcore

// Source identifies the input channel a sample originated from.
//
// Native streaming sources (WinTab on Windows, the NSEvent tablet stream
// on macOS) deliver high-frequency samples into a ring buffer that the
// pipeline pulls from with a monotonic cursor. The windowed pointer
// channel delivers standard pointer events by callback and is the
// fallback when no native source is active.
type Source uint8

const (
	// SourcePointer is the standard windowed pointer-event channel.
	SourcePointer Source = iota

	// SourceWinTab is the WinTab native tablet stream.
	SourceWinTab

	// SourceMacNative is the macOS native tablet stream.
	SourceMacNative
)

// IsNative reports whether the source is a native streaming backend.
func (s Source) IsNative() bool {
	return s == SourceWinTab || s == SourceMacNative
}

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceWinTab:
		return "wintab"
	case SourceMacNative:
		return "macnative"
	default:
		return "pointer"
	}
}

// Phase is the contact phase of an input sample.
type Phase uint8

const (
	// PhaseHover is an in-proximity sample without contact.
	PhaseHover Phase = iota

	// PhaseDown is the first contact sample of a stroke.
	PhaseDown

	// PhaseMove is a contact sample between Down and Up.
	PhaseMove

	// PhaseUp is the final contact sample of a stroke.
	PhaseUp
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseMove:
		return "move"
	case PhaseUp:
		return "up"
	default:
		return "hover"
	}
}

// InputSample is the canonical unit of input: one normalized pointer or
// tablet sample in canvas space. Samples are immutable after creation.
//
// Invariants: HostTimeUs is monotonically non-decreasing within one
// stroke session, and Pressure is exactly 0 at PhaseUp.
type InputSample struct {
	// X, Y are canvas-space coordinates.
	X, Y float64

	// Pressure is normalized to [0, 1].
	Pressure float32

	// TiltX, TiltY are normalized to [-1, 1] (degrees / 90).
	TiltX, TiltY float32

	// Rotation is the barrel rotation in degrees, [0, 360).
	Rotation float32

	// HostTimeUs is the host receive timestamp in monotonic microseconds.
	HostTimeUs uint64

	// DeviceTimeUs is the device timestamp in microseconds, or the host
	// timestamp when the device provides none.
	DeviceTimeUs uint64

	// StrokeID groups samples belonging to one pointer contact. IDs are
	// allocated by the input backend and strictly increase.
	StrokeID uint64

	// PointerID identifies the physical pointer.
	PointerID uint32

	// Source is the channel the sample came from.
	Source Source

	// Phase is the contact phase.
	Phase Phase
}
