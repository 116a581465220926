package asset

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrInvalidHandle is returned for handles that were never issued or whose
// model has already been destroyed.
var ErrInvalidHandle = errors.New("asset: invalid model handle")

// Handle refers to a model in a Registry. The zero Handle is invalid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string { return fmt.Sprintf("model#%d.%d", h.index, h.gen) }

type slot struct {
	model *Model
	refs  int
	gen   uint32
}

// Registry is an arena of shared models with per-handle reference counts.
// A model's GPU objects are released when its count drops to zero.
type Registry struct {
	ctx    *Context
	loader Loader
	slots  []slot
	free   []uint32
}

// NewRegistry returns an empty registry that loads through loader.
func NewRegistry(ctx *Context, loader Loader) *Registry {
	return &Registry{ctx: ctx, loader: loader}
}

// Context returns the layout context models are created in.
func (r *Registry) Context() *Context { return r.ctx }

// Load loads path and returns a handle holding one reference.
// Each call produces an independent model, even for the same path.
func (r *Registry) Load(path string) (Handle, error) {
	m, err := FromFile(r.ctx, r.loader, path)
	if err != nil {
		return Handle{}, err
	}
	return r.Add(m), nil
}

// Add takes ownership of m and returns a handle holding one reference.
func (r *Registry) Add(m *Model) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		idx = uint32(len(r.slots) - 1)
	}
	s := &r.slots[idx]
	s.gen++
	s.model = m
	s.refs = 1
	return Handle{index: idx, gen: s.gen}
}

func (r *Registry) lookup(h Handle) (*slot, error) {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
	s := &r.slots[h.index]
	if s.gen != h.gen || s.model == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
	return s, nil
}

// Get returns the model for h.
func (r *Registry) Get(h Handle) (*Model, error) {
	s, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	return s.model, nil
}

// Retain adds a reference to h.
func (r *Registry) Retain(h Handle) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	s.refs++
	return nil
}

// Release drops a reference to h, destroying the model at zero.
func (r *Registry) Release(h Handle) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	s.refs--
	if s.refs > 0 {
		return nil
	}
	s.model.Destroy()
	s.model = nil
	r.free = append(r.free, h.index)
	return nil
}

// Refs returns the reference count of h, or 0 for an invalid handle.
func (r *Registry) Refs(h Handle) int {
	s, err := r.lookup(h)
	if err != nil {
		return 0
	}
	return s.refs
}

// Live returns the number of models still held.
func (r *Registry) Live() int {
	return len(r.slots) - len(r.free)
}

// Close destroys every model regardless of outstanding references.
func (r *Registry) Close() {
	leaked := 0
	for i := range r.slots {
		s := &r.slots[i]
		if s.model == nil {
			continue
		}
		leaked++
		s.model.Destroy()
		s.model = nil
		s.refs = 0
		r.free = append(r.free, uint32(i))
	}
	if leaked > 0 {
		r.ctx.log.Warn("registry closed with live models", zap.Int("count", leaked))
	}
}
