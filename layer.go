package paintcore

// LayerID identifies a layer in the external layer store.
type LayerID string

// LayerStore is the contract to the external layer storage collaborator.
// The stroke pipeline reads a snapshot at stroke begin (for undo) and
// writes the blended result exactly once at commit. It never mutates a
// layer in between.
type LayerStore interface {
	// GetImageSnapshot returns a copy of the layer's pixels.
	GetImageSnapshot(id LayerID) (*Pixmap, error)

	// SetImageSnapshot replaces the layer's pixels.
	SetImageSnapshot(id LayerID, data *Pixmap) error

	// IsVisible reports whether the layer is currently visible.
	IsVisible(id LayerID) bool

	// IsLocked reports whether the layer rejects edits.
	IsLocked(id LayerID) bool
}
