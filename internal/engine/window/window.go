// Package window handles the SDL2 window and its OpenGL context.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/input"
	"github.com/Faultbox/radiance-viewer/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Window wraps an SDL2 window, its OpenGL context and its input queue.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	input     *input.Input
	alive     bool
	width     int
	height    int
	log       *zap.Logger
}

// New creates a window with an OpenGL 4.1 core context.
func New(cfg Config) (*Window, error) {
	w := &Window{
		config: cfg,
		input:  input.New(),
		log:    logger.Named("window"),
	}

	w.log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// OpenGL 4.1 Core Profile is the highest macOS supports.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		w.log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	dw, dh := w.sdlWindow.GLGetDrawableSize()
	w.width, w.height = int(dw), int(dh)
	w.alive = true

	w.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", w.width),
		zap.Int("height", w.height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

// IsAlive reports whether the window has not been asked to close.
func (w *Window) IsAlive() bool { return w.alive }

// RequestClose makes IsAlive return false from now on.
func (w *Window) RequestClose() { w.alive = false }

// PollEvents processes pending events. Quit events end the window's life;
// resizes update the drawable resolution.
func (w *Window) PollEvents() {
	if w.input.Update() {
		w.alive = false
	}
	for _, e := range w.input.Events() {
		if e.Type == input.EventWindowResize {
			dw, dh := w.sdlWindow.GLGetDrawableSize()
			w.width, w.height = int(dw), int(dh)
		}
	}
}

// Input returns the input state filled by PollEvents.
func (w *Window) Input() *input.Input { return w.input }

// GetResolution returns the drawable size in pixels.
func (w *Window) GetResolution() (int, int) { return w.width, w.height }

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// Present swaps the back buffer to the screen.
func (w *Window) Present() {
	w.sdlWindow.GLSwap()
}

// SDLWindow returns the native window handle.
func (w *Window) SDLWindow() *sdl.Window { return w.sdlWindow }

// Close destroys the window and shuts SDL2 down.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
		w.glContext = nil
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
		w.sdlWindow = nil
	}
	w.alive = false
	sdl.Quit()
}
