package app

import (
	"errors"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/asset"
)

// Input handles the frame's hotkeys:
//
//	O        open a model file
//	Ctrl+S   save the scene, camera and lights as a config file
//	F12      capture the frame to PNG
//	Tab      toggle the panel
//	PageDown select the next editable panel entry
//	Enter    commit the panel edit
//	Escape   quit
//
// While a panel entry is selected, typed text edits it and O and Ctrl+S
// are not treated as hotkeys.
func (a *App) Input() error {
	keys := a.window.Input()

	if keys.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		a.window.RequestClose()
	}
	if keys.IsKeyPressed(sdl.SCANCODE_F12) {
		a.capturePending = true
	}

	editing := false
	if a.panel != nil {
		if keys.IsKeyPressed(sdl.SCANCODE_TAB) {
			a.panel.Toggle()
		}
		if a.panel.Visible() && keys.IsKeyPressed(sdl.SCANCODE_PAGEDOWN) {
			a.panel.SelectNext()
		}
		if _, editing = a.panel.Selected(); editing {
			a.panel.Type(keys.Text())
			if keys.IsKeyPressed(sdl.SCANCODE_BACKSPACE) {
				a.panel.Backspace()
			}
			if keys.IsKeyPressed(sdl.SCANCODE_RETURN) || keys.IsKeyPressed(sdl.SCANCODE_KP_ENTER) {
				// Rejected input is logged by the panel.
				_ = a.panel.Commit()
			}
		}
	}

	if !editing {
		ctrl := keys.IsKeyDown(sdl.SCANCODE_LCTRL) || keys.IsKeyDown(sdl.SCANCODE_RCTRL)
		switch {
		case ctrl && keys.IsKeyPressed(sdl.SCANCODE_S):
			a.requestPath(a.saveFile, a.savePicked)
		case keys.IsKeyPressed(sdl.SCANCODE_O):
			a.requestPath(a.openFile, a.picked)
		}
	}
	if err := a.addPickedModel(); err != nil {
		return err
	}
	a.savePickedScene()
	return nil
}

// requestPath shows a file dialog on its own goroutine so the loop keeps
// rendering. Only one dialog is open at a time; the result is applied on
// the main goroutine.
func (a *App) requestPath(ask func() (string, error), results chan<- pickResult) {
	if a.dialogOpen {
		return
	}
	a.dialogOpen = true
	go func() {
		path, err := ask()
		results <- pickResult{path: path, err: err}
	}()
}

func (a *App) addPickedModel() error {
	var r pickResult
	select {
	case r = <-a.picked:
	default:
		return nil
	}
	a.dialogOpen = false

	if r.err != nil {
		if !errors.Is(r.err, dialog.ErrCancelled) {
			a.log.Warn("file dialog failed", zap.Error(r.err))
		}
		return nil
	}
	if err := a.scene.AddModel(r.path); err != nil && !errors.Is(err, asset.ErrLoadFailed) {
		return err
	}
	return nil
}

func openModelDialog() (string, error) {
	return dialog.File().
		Filter("Wavefront OBJ", "obj").
		Filter("All Files", "*").
		Title("Open Model").
		Load()
}

// captureFrame reads the back buffer, so it must run after the frame is
// drawn and before it is presented.
func (a *App) captureFrame() {
	path, err := a.capturer.Frame(a.dev, a.width, a.height)
	if err != nil {
		a.log.Warn("frame capture failed", zap.Error(err))
		return
	}
	a.log.Info("frame captured", zap.String("path", path))
}
