// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Scene    SceneConfig    `yaml:"scene"`
	Camera   CameraConfig   `yaml:"camera"`
	Shaders  ShaderConfig   `yaml:"shaders"`
	Capture  CaptureConfig  `yaml:"capture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// SceneConfig lists what is loaded at startup.
type SceneConfig struct {
	Models []string      `yaml:"models"`
	Lights []LightConfig `yaml:"lights"`
}

// LightConfig describes one light. Direction is derived from Target.
type LightConfig struct {
	Type         string     `yaml:"type"` // point, spot, directional
	Intensity    [3]float32 `yaml:"intensity"`
	Position     [3]float32 `yaml:"position"`
	Target       [3]float32 `yaml:"target"`
	HalfAngleDeg float32    `yaml:"half_angle_deg"`
}

// CameraConfig holds the initial camera setup.
type CameraConfig struct {
	Position  [3]float32 `yaml:"position"`
	Target    [3]float32 `yaml:"target"`
	FovDeg    float32    `yaml:"fov_deg"`
	Near      float32    `yaml:"near"`
	Far       float32    `yaml:"far"`
	MoveSpeed float32    `yaml:"move_speed"` // units per second
	LookSpeed float32    `yaml:"look_speed"` // radians per pixel of mouse motion
}

// ShaderConfig locates the scene shaders.
type ShaderConfig struct {
	Dir      string `yaml:"dir"`
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
	Watch    bool   `yaml:"watch"`
}

// CaptureConfig controls frame captures.
type CaptureConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the sample startup configuration.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Scene: SceneConfig{
			Models: []string{"../models/test0/test0.obj"},
			Lights: []LightConfig{
				{
					Type:         "spot",
					Intensity:    [3]float32{100, 90, 90},
					Position:     [3]float32{0, 2.5, -2.5},
					Target:       [3]float32{0, 0, 0},
					HalfAngleDeg: 30,
				},
				{
					Type:         "spot",
					Intensity:    [3]float32{70, 70, 80},
					Position:     [3]float32{1, 2.5, -2.5},
					Target:       [3]float32{1, 2.5, 0},
					HalfAngleDeg: 30,
				},
			},
		},
		Camera: CameraConfig{
			Position:  [3]float32{0, 2.5, -5},
			Target:    [3]float32{0, 0, 0},
			FovDeg:    60,
			Near:      0.1,
			Far:       10000,
			MoveSpeed: 4,
			LookSpeed: 0.005,
		},
		Shaders: ShaderConfig{
			Dir:      "shaders",
			Vertex:   "simple.vert",
			Fragment: "simple.frag",
			Watch:    true,
		},
		Capture: CaptureConfig{
			Dir:    "captures",
			Prefix: "frame",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "log.txt",
		},
	}
}
