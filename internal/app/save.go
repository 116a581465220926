package app

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/config"
	"github.com/Faultbox/radiance-viewer/internal/engine/scene"
)

func saveSceneDialog() (string, error) {
	return dialog.File().
		Filter("YAML Config", "yaml", "yml").
		Title("Save Scene").
		Save()
}

// savePickedScene writes the scene once the save dialog returns. If the
// dialog itself fails the config goes to the default location instead.
func (a *App) savePickedScene() {
	var r pickResult
	select {
	case r = <-a.savePicked:
	default:
		return
	}
	a.dialogOpen = false

	switch {
	case errors.Is(r.err, dialog.ErrCancelled):
		return
	case r.err != nil:
		a.log.Warn("file dialog failed, saving to the config directory", zap.Error(r.err))
		if err := a.sceneConfig().Save(); err != nil {
			a.log.Warn("failed to save scene", zap.Error(err))
			return
		}
		a.log.Info("scene saved", zap.String("dir", config.ConfigDir()))
	default:
		if err := a.sceneConfig().SaveTo(r.path); err != nil {
			a.log.Warn("failed to save scene", zap.String("path", r.path), zap.Error(err))
			return
		}
		a.log.Info("scene saved", zap.String("path", r.path))
	}
}

// sceneConfig returns a copy of the startup config carrying the live
// camera, model placements and lights, so loading it reproduces the view.
func (a *App) sceneConfig() *config.Config {
	c := *a.cfg

	pos := a.camera.Position()
	c.Camera.Position = pos
	c.Camera.Target = pos.Add(a.camera.Direction())

	placements := a.scene.Models()
	c.Scene.Models = make([]string, 0, len(placements))
	for i := range placements {
		m, err := a.scene.Model(i)
		if err != nil {
			continue
		}
		c.Scene.Models = append(c.Scene.Models, m.Path())
	}

	lights := a.scene.Lights()
	c.Scene.Lights = make([]config.LightConfig, 0, len(lights))
	for _, l := range lights {
		c.Scene.Lights = append(c.Scene.Lights, lightToConfig(l))
	}
	return &c
}

// lightToConfig is the inverse of lightFromConfig. The target is one unit
// along the light direction.
func lightToConfig(l scene.Light) config.LightConfig {
	return config.LightConfig{
		Type:         l.Type.String(),
		Intensity:    l.Intensity,
		Position:     l.Position,
		Target:       l.Position.Add(l.Direction),
		HalfAngleDeg: mgl32.RadToDeg(l.HalfAngle),
	}
}
