package paintcore

import (
	"fmt"
	"sync"
)

// MemoryLayerStore is an in-memory LayerStore. It backs tests and the
// demo tooling; real applications plug in their document model.
type MemoryLayerStore struct {
	mu     sync.Mutex
	layers map[LayerID]*memoryLayer
}

type memoryLayer struct {
	pix    *Pixmap
	hidden bool
	locked bool
}

// NewMemoryLayerStore creates an empty store.
func NewMemoryLayerStore() *MemoryLayerStore {
	return &MemoryLayerStore{layers: make(map[LayerID]*memoryLayer)}
}

// AddLayer creates a visible, unlocked layer of the given size.
func (s *MemoryLayerStore) AddLayer(id LayerID, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[id] = &memoryLayer{pix: NewPixmap(width, height)}
}

// SetHidden toggles layer visibility.
func (s *MemoryLayerStore) SetHidden(id LayerID, hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.layers[id]; ok {
		l.hidden = hidden
	}
}

// SetLocked toggles edit locking.
func (s *MemoryLayerStore) SetLocked(id LayerID, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.layers[id]; ok {
		l.locked = locked
	}
}

// GetImageSnapshot implements LayerStore. The returned pixmap is a
// copy; mutating it does not affect the stored layer.
func (s *MemoryLayerStore) GetImageSnapshot(id LayerID) (*Pixmap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[id]
	if !ok {
		return nil, fmt.Errorf("memstore: no layer %q", id)
	}
	return l.pix.Clone(), nil
}

// SetImageSnapshot implements LayerStore.
func (s *MemoryLayerStore) SetImageSnapshot(id LayerID, data *Pixmap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[id]
	if !ok {
		return fmt.Errorf("memstore: no layer %q", id)
	}
	l.pix = data.Clone()
	return nil
}

// IsVisible implements LayerStore.
func (s *MemoryLayerStore) IsVisible(id LayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[id]
	return ok && !l.hidden
}

// IsLocked implements LayerStore.
func (s *MemoryLayerStore) IsLocked(id LayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[id]
	return ok && l.locked
}

var _ LayerStore = (*MemoryLayerStore)(nil)
