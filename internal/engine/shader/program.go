// Package shader loads shading programs from source files and reloads them
// when the files change.
package shader

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
	"github.com/Faultbox/radiance-viewer/internal/logger"
)

// Bindings maps uniform block names to buffer binding points and sampler
// names to texture units. They are applied after every link.
type Bindings struct {
	Blocks   map[string]uint32
	Samplers map[string]uint32
}

// Program is a file-backed shading program. A failed reload keeps the
// previously linked program active.
type Program struct {
	dev          gpu.Device
	vertexPath   string
	fragmentPath string
	bindings     Bindings
	id           gpu.Program
	log          *zap.Logger
}

// Load compiles the program from vertexPath and fragmentPath.
func Load(dev gpu.Device, vertexPath, fragmentPath string, bindings Bindings) (*Program, error) {
	p := &Program{
		dev:          dev,
		vertexPath:   vertexPath,
		fragmentPath: fragmentPath,
		bindings:     bindings,
		log:          logger.Named("shader"),
	}
	id, err := p.build()
	if err != nil {
		return nil, err
	}
	p.id = id
	p.log.Info("program loaded", zap.String("name", p.Name()), zap.Uint32("id", uint32(id)))
	return p, nil
}

func (p *Program) build() (gpu.Program, error) {
	vs, err := os.ReadFile(p.vertexPath)
	if err != nil {
		return 0, fmt.Errorf("read vertex shader: %w", err)
	}
	fs, err := os.ReadFile(p.fragmentPath)
	if err != nil {
		return 0, fmt.Errorf("read fragment shader: %w", err)
	}
	id, err := p.dev.CompileProgram(string(vs), string(fs))
	if err != nil {
		return 0, fmt.Errorf("compile %s: %w", p.Name(), err)
	}
	// Unused blocks and samplers are optimized out by the compiler;
	// drawing still works without them.
	for name, binding := range p.bindings.Blocks {
		if err := p.dev.BindUniformBlock(id, name, binding); err != nil {
			p.log.Warn("uniform block not bound", zap.String("block", name), zap.Error(err))
		}
	}
	for name, unit := range p.bindings.Samplers {
		if err := p.dev.BindSampler(id, name, unit); err != nil {
			p.log.Warn("sampler not bound", zap.String("sampler", name), zap.Error(err))
		}
	}
	return id, nil
}

// Reload recompiles from disk and swaps the program in on success.
func (p *Program) Reload() error {
	id, err := p.build()
	if err != nil {
		return err
	}
	old := p.id
	p.id = id
	if old != 0 {
		p.dev.DeleteProgram(old)
	}
	p.log.Info("program reloaded", zap.String("name", p.Name()), zap.Uint32("id", uint32(id)))
	return nil
}

// ID returns the currently active program.
func (p *Program) ID() gpu.Program { return p.id }

// Name identifies the program in logs.
func (p *Program) Name() string {
	return filepath.Base(p.vertexPath) + "+" + filepath.Base(p.fragmentPath)
}

// Sources returns the files the program is built from.
func (p *Program) Sources() []string {
	return []string{p.vertexPath, p.fragmentPath}
}

// Delete releases the program.
func (p *Program) Delete() {
	if p.id != 0 {
		p.dev.DeleteProgram(p.id)
		p.id = 0
	}
}
