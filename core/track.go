package core

// Track buffers substate reads/writes over a SubstateStore in layers, one
// per open call frame (spec.md §4.E). A frame's writes are invisible to its
// caller until the frame returns successfully, at which point PopAndMerge
// folds them into the parent layer; PopAndDiscard throws them away entirely
// on frame failure. Only Commit ever touches the backing store — this is
// the copy-on-write isolation the call-frame model depends on.
type Track struct {
	store  SubstateStore
	layers []map[string]trackEntry
}

type trackEntry struct {
	value   []byte
	deleted bool
}

// NewTrack opens a track over store with a single base layer.
func NewTrack(store SubstateStore) *Track {
	return &Track{store: store, layers: []map[string]trackEntry{{}}}
}

// PushLayer opens a new layer for a nested call frame.
func (t *Track) PushLayer() {
	t.layers = append(t.layers, map[string]trackEntry{})
}

// PopAndMerge folds the top layer's writes down into the layer below,
// called when a frame returns successfully.
func (t *Track) PopAndMerge() {
	n := len(t.layers)
	if n < 2 {
		return
	}
	top := t.layers[n-1]
	below := t.layers[n-2]
	for k, v := range top {
		below[k] = v
	}
	t.layers = t.layers[:n-1]
}

// PopAndDiscard drops the top layer's writes entirely, called when a frame
// aborts with an error.
func (t *Track) PopAndDiscard() {
	if len(t.layers) < 2 {
		return
	}
	t.layers = t.layers[:len(t.layers)-1]
}

// Get reads key, checking layers from the top down before falling back to
// the backing store.
func (t *Track) Get(key []byte) ([]byte, bool, error) {
	k := string(key)
	for i := len(t.layers) - 1; i >= 0; i-- {
		if e, ok := t.layers[i][k]; ok {
			if e.deleted {
				return nil, false, nil
			}
			return e.value, true, nil
		}
	}
	return t.store.Get(key)
}

// Set writes key into the current (top) layer only.
func (t *Track) Set(key []byte, value []byte) {
	t.layers[len(t.layers)-1][string(key)] = trackEntry{value: value}
}

// Delete marks key deleted in the current layer.
func (t *Track) Delete(key []byte) {
	t.layers[len(t.layers)-1][string(key)] = trackEntry{deleted: true}
}

// Commit flushes the base layer (layer 0) to the backing store. Callers
// must have merged every nested layer down to the base first (i.e. the
// transaction's outermost frame returned successfully).
func (t *Track) Commit() error {
	base := t.layers[0]
	for k, e := range base {
		if e.deleted {
			if err := t.store.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := t.store.Set([]byte(k), e.value); err != nil {
			return err
		}
	}
	return nil
}

// Depth reports the number of open layers, i.e. the call-frame nesting
// depth including the base layer.
func (t *Track) Depth() int { return len(t.layers) }
