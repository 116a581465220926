package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies how a light is evaluated.
type LightType int

const (
	LightPoint LightType = iota
	LightSpot
	LightDirectional
)

func (t LightType) String() string {
	switch t {
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	default:
		return fmt.Sprintf("LightType(%d)", int(t))
	}
}

// ParseLightType maps a config name to a LightType.
func ParseLightType(s string) (LightType, error) {
	switch s {
	case "point":
		return LightPoint, nil
	case "spot":
		return LightSpot, nil
	case "directional":
		return LightDirectional, nil
	}
	return 0, fmt.Errorf("unknown light type %q", s)
}

// Light is a scene light. Direction must be normalized by the caller;
// HalfAngle (radians) only applies to spot lights.
type Light struct {
	Type      LightType
	Intensity mgl32.Vec3
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	HalfAngle float32
}

// SpotLight returns a spot light at position aimed at target.
func SpotLight(intensity, position, target mgl32.Vec3, halfAngle float32) Light {
	return Light{
		Type:      LightSpot,
		Intensity: intensity,
		Position:  position,
		Direction: target.Sub(position).Normalize(),
		HalfAngle: halfAngle,
	}
}

func (l Light) String() string {
	return fmt.Sprintf("%s light at %v dir %v intensity %v", l.Type, l.Position, l.Direction, l.Intensity)
}

// cosHalfAngle is what shaders compare against; non-spot lights cover
// the whole sphere.
func (l Light) cosHalfAngle() float32 {
	if l.Type != LightSpot {
		return -1
	}
	return math32.Cos(l.HalfAngle)
}
