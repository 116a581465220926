// Package scene aggregates shared model assets and lights and draws them.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/asset"
	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
	"github.com/Faultbox/radiance-viewer/internal/logger"
)

// Texture units used by segment materials.
const (
	UnitDiffuse           = 0
	UnitNormal            = 1
	UnitRoughnessMetallic = 2
)

// Camera supplies the view-projection transform for a frame.
type Camera interface {
	ViewProjection() mgl32.Mat4
}

// Program is the shading program used for every model. Its ID may change
// between frames when the program is reloaded.
type Program interface {
	ID() gpu.Program
	Delete()
}

// Stats summarizes scene contents.
type Stats struct {
	Models    int
	Lights    int
	Triangles int
}

// Scene holds model placements in draw order plus lights.
// It is not safe for concurrent use; mutate it only between frames.
type Scene struct {
	dev     gpu.Device
	reg     *asset.Registry
	program Program
	uniform gpu.Buffer

	models []asset.Handle
	lights []Light

	log *zap.Logger
}

// New creates an empty scene drawing models from reg with program.
// The scene takes ownership of program.
func New(reg *asset.Registry, program Program) (*Scene, error) {
	dev := reg.Context().Device()
	ub, err := dev.CreateUniformBuffer(perFrameSize)
	if err != nil {
		return nil, fmt.Errorf("create per-frame uniforms: %w", err)
	}
	return &Scene{
		dev:     dev,
		reg:     reg,
		program: program,
		uniform: ub,
		log:     logger.Named("scene"),
	}, nil
}

// AddModel loads filename and appends it. On failure the scene is left
// unchanged. Errors wrapping asset.ErrLoadFailed are recoverable; any
// other error comes from the GPU and should be treated as fatal.
func (s *Scene) AddModel(filename string) error {
	h, err := s.reg.Load(filename)
	if err != nil {
		if errors.Is(err, asset.ErrLoadFailed) {
			s.log.Warn("failed to load model", zap.String("path", filename), zap.Error(err))
		} else {
			s.log.Error("model upload failed", zap.String("path", filename), zap.Error(err))
		}
		return err
	}
	s.models = append(s.models, h)
	return nil
}

// AddModelHandle places an already loaded model again.
func (s *Scene) AddModelHandle(h asset.Handle) error {
	if err := s.reg.Retain(h); err != nil {
		return err
	}
	s.models = append(s.models, h)
	return nil
}

// RemoveModel removes the placement at index i, keeping the order of the rest.
func (s *Scene) RemoveModel(i int) error {
	if i < 0 || i >= len(s.models) {
		return fmt.Errorf("remove model: index %d out of range [0, %d)", i, len(s.models))
	}
	h := s.models[i]
	s.models = append(s.models[:i], s.models[i+1:]...)
	return s.reg.Release(h)
}

// SetModelCount grows the placement list by repeating the last model or
// shrinks it from the end.
func (s *Scene) SetModelCount(n int) error {
	if n < 0 {
		return fmt.Errorf("model count %d is negative", n)
	}
	for len(s.models) > n {
		if err := s.RemoveModel(len(s.models) - 1); err != nil {
			return err
		}
	}
	if len(s.models) < n && len(s.models) == 0 {
		return errors.New("no model to repeat")
	}
	for len(s.models) < n {
		if err := s.AddModelHandle(s.models[len(s.models)-1]); err != nil {
			return err
		}
	}
	return nil
}

// Models returns the placements in draw order.
func (s *Scene) Models() []asset.Handle {
	return append([]asset.Handle(nil), s.models...)
}

// Model returns the model of placement i.
func (s *Scene) Model(i int) (*asset.Model, error) {
	if i < 0 || i >= len(s.models) {
		return nil, fmt.Errorf("model index %d out of range [0, %d)", i, len(s.models))
	}
	return s.reg.Get(s.models[i])
}

// AddLight appends a light as given.
func (s *Scene) AddLight(l Light) {
	s.lights = append(s.lights, l)
	if len(s.lights) == MaxLights+1 {
		s.log.Warn("light limit exceeded, extra lights are not shaded", zap.Int("max", MaxLights))
	}
}

// SetLightCount grows the light list by repeating the last light or
// truncates it.
func (s *Scene) SetLightCount(n int) error {
	switch {
	case n < 0:
		return fmt.Errorf("light count %d is negative", n)
	case n <= len(s.lights):
		s.lights = s.lights[:n]
		return nil
	case len(s.lights) == 0:
		return errors.New("no light to repeat")
	}
	for len(s.lights) < n {
		s.AddLight(s.lights[len(s.lights)-1])
	}
	return nil
}

// Lights returns the light list. Elements may be edited in place between
// frames.
func (s *Scene) Lights() []Light { return s.lights }

// Stats returns current counts.
func (s *Scene) Stats() Stats {
	st := Stats{Models: len(s.models), Lights: len(s.lights)}
	for _, h := range s.models {
		if m, err := s.reg.Get(h); err == nil {
			st.Triangles += m.TriangleCount()
		}
	}
	return st
}

// Draw renders every model under cam. The per-frame uniforms are written
// before anything is drawn, then models draw in placement order and each
// model's segments in stored order.
func (s *Scene) Draw(cam Camera) error {
	if err := s.writePerFrame(cam.ViewProjection()); err != nil {
		return err
	}
	s.dev.BindUniformBuffer(PerFrameBinding, s.uniform)
	s.dev.UseProgram(s.program.ID())
	if err := s.reg.Context().BindLayout(); err != nil {
		return err
	}

	for _, h := range s.models {
		m, err := s.reg.Get(h)
		if err != nil {
			return err
		}
		m.BindBuffers()
		for _, seg := range m.Segments() {
			s.dev.BindTexture(UnitDiffuse, seg.Diffuse)
			s.dev.BindTexture(UnitNormal, seg.Normal)
			s.dev.BindTexture(UnitRoughnessMetallic, seg.RoughnessMetallic)
			s.dev.DrawIndexed(int32(seg.NumIndices), uintptr(seg.StartIndex)*4)
		}
	}
	return nil
}

// writePerFrame maps the uniform buffer, fills it and unmaps it on every
// path out.
func (s *Scene) writePerFrame(viewProj mgl32.Mat4) (err error) {
	buf, err := s.dev.MapBuffer(s.uniform)
	if err != nil {
		return fmt.Errorf("map per-frame uniforms: %w", err)
	}
	defer func() {
		if uerr := s.dev.UnmapBuffer(s.uniform); uerr != nil && err == nil {
			err = fmt.Errorf("unmap per-frame uniforms: %w", uerr)
		}
	}()
	if len(buf) < perFrameSize {
		return fmt.Errorf("per-frame uniforms: mapped %d bytes, need %d", len(buf), perFrameSize)
	}
	encodePerFrame(buf, viewProj, s.lights)
	return nil
}

// Close releases every placement, the uniform buffer and the program.
func (s *Scene) Close() error {
	var err error
	for _, h := range s.models {
		err = multierr.Append(err, s.reg.Release(h))
	}
	s.models = nil
	if s.uniform != 0 {
		s.dev.DeleteBuffer(s.uniform)
		s.uniform = 0
	}
	if s.program != nil {
		s.program.Delete()
		s.program = nil
	}
	return err
}
