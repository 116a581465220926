package app

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/radiance-viewer/internal/engine/ui"
)

// bindPanel registers the live state shown on the overlay.
func (a *App) bindPanel() {
	p := ui.NewPanel("Viewer", a)
	p.AddReadOnly("Frametime (ms)", func(a *App) string {
		return strconv.FormatFloat(a.frameTime.Seconds()*1000, 'f', 2, 64)
	})
	p.AddReadWrite("Models", getModelCount, setModelCount)
	p.AddReadWrite("Lights", getLightCount, setLightCount)
	p.AddReadOnly("Triangles", func(a *App) string { return strconv.Itoa(a.scene.Stats().Triangles) })
	p.AddReadOnly("Camera", func(a *App) string { return formatVec3(a.camera.Position()) })
	p.AddReadWrite("Light0 Dir", getLight0Dir, setLight0Dir)
	a.panel = p
}

func getModelCount(a *App) string { return strconv.Itoa(a.scene.Stats().Models) }

// setModelCount repeats the last placed model or removes placements from
// the end. Repeats share the loaded asset.
func setModelCount(a *App, text string) error {
	n, err := parseCount(text)
	if err != nil {
		return err
	}
	return a.scene.SetModelCount(n)
}

func getLightCount(a *App) string { return strconv.Itoa(a.scene.Stats().Lights) }

func setLightCount(a *App, text string) error {
	n, err := parseCount(text)
	if err != nil {
		return err
	}
	return a.scene.SetLightCount(n)
}

func parseCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("count %d is negative", n)
	}
	return n, nil
}

func getLight0Dir(a *App) string {
	lights := a.scene.Lights()
	if len(lights) == 0 {
		return "-"
	}
	return formatVec3(lights[0].Direction)
}

func setLight0Dir(a *App, text string) error {
	lights := a.scene.Lights()
	if len(lights) == 0 {
		return errors.New("scene has no lights")
	}
	dir, err := parseDirection(text)
	if err != nil {
		return err
	}
	lights[0].Direction = dir
	return nil
}

func formatVec3(v mgl32.Vec3) string {
	return fmt.Sprintf("%.2f %.2f %.2f", v[0], v[1], v[2])
}

// parseDirection reads three floats separated by spaces or commas and
// normalizes them.
func parseDirection(text string) (mgl32.Vec3, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("want 3 components, got %d", len(fields))
	}
	var v mgl32.Vec3
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = float32(x)
	}
	if l := float64(v.Len()); !(l > 0) || math.IsInf(l, 0) {
		return mgl32.Vec3{}, errors.New("direction must be finite and non-zero")
	}
	return v.Normalize(), nil
}
