// Package app implements the viewer's main loop and component wiring.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/config"
	"github.com/Faultbox/radiance-viewer/internal/engine/asset"
	"github.com/Faultbox/radiance-viewer/internal/engine/asset/objfile"
	"github.com/Faultbox/radiance-viewer/internal/engine/camera"
	"github.com/Faultbox/radiance-viewer/internal/engine/capture"
	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
	"github.com/Faultbox/radiance-viewer/internal/engine/gpu/glgpu"
	"github.com/Faultbox/radiance-viewer/internal/engine/input"
	"github.com/Faultbox/radiance-viewer/internal/engine/renderer"
	"github.com/Faultbox/radiance-viewer/internal/engine/scene"
	"github.com/Faultbox/radiance-viewer/internal/engine/shader"
	"github.com/Faultbox/radiance-viewer/internal/engine/ui"
	"github.com/Faultbox/radiance-viewer/internal/engine/window"
	"github.com/Faultbox/radiance-viewer/internal/logger"
)

const title = "Radiance Viewer"

// shaderBindings matches the interface of shaders/simple.vert and
// shaders/simple.frag.
var shaderBindings = shader.Bindings{
	Blocks: map[string]uint32{"PerFrame": scene.PerFrameBinding},
	Samplers: map[string]uint32{
		"DiffuseMap":           scene.UnitDiffuse,
		"NormalMap":            scene.UnitNormal,
		"RoughnessMetallicMap": scene.UnitRoughnessMetallic,
	},
}

// Window is the platform window driving the loop.
type Window interface {
	IsAlive() bool
	RequestClose()
	PollEvents()
	Input() *input.Input
	GetResolution() (int, int)
	SetTitle(title string)
	Present()
	Close()
}

// Camera is advanced once per frame and viewed through by the renderer.
type Camera interface {
	scene.Camera
	Update(elapsed time.Duration)
	SetResolution(width, height int)
	Position() mgl32.Vec3
	Direction() mgl32.Vec3
}

// Renderer draws the scene.
type Renderer interface {
	Draw(cam scene.Camera) error
	Resize(width, height int)
}

// Watcher recompiles changed shaders.
type Watcher interface {
	Update() int
	Close() error
}

// Overlay paints the panel on top of the frame.
type Overlay interface {
	ui.Painter
	Resize(width, height int)
	Close()
}

type pickResult struct {
	path string
	err  error
}

// App owns the window, camera, scene, renderer and panel, and runs the
// Update/Draw loop.
type App struct {
	window   Window
	dev      gpu.Device
	camera   Camera
	ctx      *asset.Context
	registry *asset.Registry
	program  *shader.Program
	scene    *scene.Scene
	renderer Renderer
	watcher  Watcher
	panel    *ui.Panel[App]
	overlay  Overlay
	capturer *capture.Capturer
	clock    Stopwatch

	capturePending bool

	// openFile and saveFile ask the user for a path. They run off the
	// main goroutine; results arrive on picked and savePicked.
	openFile   func() (string, error)
	saveFile   func() (string, error)
	picked     chan pickResult
	savePicked chan pickResult
	dialogOpen bool

	// cfg is the startup config; saved scenes start from a copy of it.
	cfg *config.Config

	width, height int
	frameTime     time.Duration

	log *zap.Logger
}

// New constructs every component in dependency order. The logger must
// already be initialized.
func New(cfg *config.Config) (a *App, err error) {
	a = &App{
		clock:      NewStopwatch(),
		openFile:   openModelDialog,
		saveFile:   saveSceneDialog,
		picked:     make(chan pickResult, 1),
		savePicked: make(chan pickResult, 1),
		cfg:        cfg,
		capturer:   capture.New(cfg.Capture.Dir, cfg.Capture.Prefix),
		log:        logger.Named("app"),
	}
	defer func() {
		if err != nil {
			if cerr := a.Close(); cerr != nil {
				a.log.Warn("cleanup after failed start", zap.Error(cerr))
			}
			a = nil
		}
	}()

	w, err := window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return a, fmt.Errorf("failed to create window: %w", err)
	}
	a.window = w
	a.width, a.height = w.GetResolution()

	dev, err := glgpu.New()
	if err != nil {
		return a, fmt.Errorf("failed to create GPU device: %w", err)
	}
	a.dev = dev

	a.camera = camera.New(cameraConfig(cfg.Camera), a.width, a.height, w.Input())

	a.ctx = asset.NewContext(a.dev)
	if err = a.ctx.CreateLayout(); err != nil {
		return a, err
	}
	a.registry = asset.NewRegistry(a.ctx, objfile.New())

	a.program, err = shader.Load(a.dev,
		filepath.Join(cfg.Shaders.Dir, cfg.Shaders.Vertex),
		filepath.Join(cfg.Shaders.Dir, cfg.Shaders.Fragment),
		shaderBindings)
	if err != nil {
		return a, fmt.Errorf("failed to load shaders: %w", err)
	}
	if a.scene, err = scene.New(a.registry, a.program); err != nil {
		return a, fmt.Errorf("failed to create scene: %w", err)
	}
	if err = a.populate(cfg.Scene); err != nil {
		return a, err
	}

	a.renderer = renderer.New(a.dev, a.scene, a.width, a.height)

	if cfg.Shaders.Watch {
		sw, err := shader.NewWatcher()
		if err != nil {
			return a, err
		}
		a.watcher = sw
		if err := sw.SetWatchDirectory(cfg.Shaders.Dir); err != nil {
			return a, err
		}
		sw.Register(a.program)
	}

	overlay, err := ui.NewOverlay(a.dev, a.width, a.height)
	if err != nil {
		return a, fmt.Errorf("failed to create overlay: %w", err)
	}
	a.overlay = overlay
	a.bindPanel()

	s := a.scene.Stats()
	a.log.Info("viewer initialized",
		zap.Int("models", s.Models),
		zap.Int("lights", s.Lights),
		zap.Int("triangles", s.Triangles))
	return a, nil
}

func cameraConfig(c config.CameraConfig) camera.Config {
	return camera.Config{
		Position:  mgl32.Vec3(c.Position),
		Target:    mgl32.Vec3(c.Target),
		FovDeg:    c.FovDeg,
		Near:      c.Near,
		Far:       c.Far,
		MoveSpeed: c.MoveSpeed,
		LookSpeed: c.LookSpeed,
	}
}

// populate loads the startup models and lights. Models that fail to load
// are skipped; any other error is fatal.
func (a *App) populate(sc config.SceneConfig) error {
	for _, path := range sc.Models {
		if err := a.scene.AddModel(path); err != nil && !errors.Is(err, asset.ErrLoadFailed) {
			return err
		}
	}
	for i, lc := range sc.Lights {
		l, err := lightFromConfig(lc)
		if err != nil {
			return fmt.Errorf("light %d: %w", i, err)
		}
		a.scene.AddLight(l)
	}
	return nil
}

func lightFromConfig(lc config.LightConfig) (scene.Light, error) {
	typ, err := scene.ParseLightType(lc.Type)
	if err != nil {
		return scene.Light{}, err
	}
	intensity := mgl32.Vec3(lc.Intensity)
	position := mgl32.Vec3(lc.Position)
	target := mgl32.Vec3(lc.Target)
	halfAngle := mgl32.DegToRad(lc.HalfAngleDeg)

	if typ == scene.LightSpot {
		return scene.SpotLight(intensity, position, target, halfAngle), nil
	}
	l := scene.Light{Type: typ, Intensity: intensity, Position: position, HalfAngle: halfAngle}
	if dir := target.Sub(position); dir.Len() > 0 {
		l.Direction = dir.Normalize()
	}
	return l, nil
}

// Run loops Update then Draw while the window is alive.
func (a *App) Run() error {
	a.log.Info("starting main loop")
	a.clock.StopAndReset()
	a.clock.Resume()

	for a.window.IsAlive() {
		elapsed := a.clock.RunningTotal()
		a.clock.StopAndReset()
		a.clock.Resume()

		if err := a.Update(elapsed); err != nil {
			return fmt.Errorf("update error: %w", err)
		}
		if err := a.Draw(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
	}

	a.log.Info("main loop finished")
	return nil
}

// Update processes one frame of input and time-dependent state.
func (a *App) Update(elapsed time.Duration) error {
	a.window.PollEvents()
	a.syncResolution()
	if a.watcher != nil {
		a.watcher.Update()
	}
	a.camera.Update(elapsed)

	a.frameTime = elapsed
	a.window.SetTitle(frameTitle(elapsed))

	return a.Input()
}

func (a *App) syncResolution() {
	w, h := a.window.GetResolution()
	if w == a.width && h == a.height {
		return
	}
	a.width, a.height = w, h
	a.camera.SetResolution(w, h)
	a.renderer.Resize(w, h)
	if a.overlay != nil {
		a.overlay.Resize(w, h)
	}
	a.log.Debug("resolution changed", zap.Int("width", w), zap.Int("height", h))
}

// frameTitle formats the frame time and instantaneous FPS. A zero
// elapsed time reports 0 FPS.
func frameTitle(elapsed time.Duration) string {
	ms := float64(elapsed) / float64(time.Millisecond)
	var fps float64
	if elapsed > 0 {
		fps = 1 / elapsed.Seconds()
	}
	return fmt.Sprintf("time per frame %fms (FPS: %f)", ms, fps)
}

// Draw renders the scene, then the panel, then captures the frame if
// requested, then presents.
func (a *App) Draw() error {
	if err := a.renderer.Draw(a.camera); err != nil {
		return err
	}
	if a.panel != nil && a.overlay != nil {
		a.panel.Draw(a.overlay)
	}
	if a.capturePending {
		a.capturePending = false
		a.captureFrame()
	}
	a.window.Present()
	return nil
}

// Close tears components down in reverse dependency order: scene, model
// registry, vertex layout, overlay, shader watcher, window. It is safe to
// call on a partially constructed App and more than once.
func (a *App) Close() error {
	a.log.Info("closing viewer")
	var err error

	if a.scene != nil {
		err = multierr.Append(err, a.scene.Close())
		a.scene = nil
	} else if a.program != nil {
		a.program.Delete()
	}
	a.program = nil

	if a.registry != nil {
		a.registry.Close()
		a.registry = nil
	}
	if a.ctx != nil && a.ctx.HasLayout() {
		err = multierr.Append(err, a.ctx.DestroyLayout())
	}
	if a.overlay != nil {
		a.overlay.Close()
		a.overlay = nil
	}
	if a.watcher != nil {
		err = multierr.Append(err, a.watcher.Close())
		a.watcher = nil
	}
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
	return err
}
