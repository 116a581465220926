package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Sample startup: one model, two spot lights
	if len(cfg.Scene.Models) != 1 {
		t.Errorf("expected 1 default model, got %d", len(cfg.Scene.Models))
	}
	if len(cfg.Scene.Lights) != 2 {
		t.Fatalf("expected 2 default lights, got %d", len(cfg.Scene.Lights))
	}
	for i, l := range cfg.Scene.Lights {
		if l.Type != "spot" {
			t.Errorf("light %d: expected spot, got %s", i, l.Type)
		}
		if l.HalfAngleDeg != 30 {
			t.Errorf("light %d: expected half angle 30, got %f", i, l.HalfAngleDeg)
		}
	}
	if cfg.Scene.Lights[0].Intensity != [3]float32{100, 90, 90} {
		t.Errorf("unexpected light 0 intensity %v", cfg.Scene.Lights[0].Intensity)
	}

	if cfg.Camera.FovDeg != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Camera.FovDeg)
	}
	if cfg.Shaders.Dir != "shaders" {
		t.Errorf("expected shader dir 'shaders', got %s", cfg.Shaders.Dir)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

scene:
  models:
    - "a.obj"
    - "b.obj"
  lights:
    - type: point
      intensity: [1, 2, 3]
      position: [0, 5, 0]

camera:
  fov_deg: 75
  move_speed: 10

shaders:
  dir: "glsl"
  watch: false

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	// Lists from the file replace the defaults
	if len(cfg.Scene.Models) != 2 || cfg.Scene.Models[1] != "b.obj" {
		t.Errorf("unexpected models %v", cfg.Scene.Models)
	}
	if len(cfg.Scene.Lights) != 1 || cfg.Scene.Lights[0].Type != "point" {
		t.Errorf("unexpected lights %+v", cfg.Scene.Lights)
	}

	if cfg.Camera.FovDeg != 75 {
		t.Errorf("expected fov 75, got %f", cfg.Camera.FovDeg)
	}
	// Unset fields keep defaults
	if cfg.Camera.Near != 0.1 {
		t.Errorf("expected default near 0.1, got %f", cfg.Camera.Near)
	}
	if cfg.Shaders.Dir != "glsl" || cfg.Shaders.Watch {
		t.Errorf("unexpected shaders %+v", cfg.Shaders)
	}
	if cfg.Shaders.Vertex != "simple.vert" {
		t.Errorf("expected default vertex shader, got %s", cfg.Shaders.Vertex)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }, true},
		{"negative near", func(c *Config) { c.Camera.Near = -1 }, true},
		{"far before near", func(c *Config) { c.Camera.Far = 0.05 }, true},
		{"unknown light", func(c *Config) { c.Scene.Lights[0].Type = "area" }, true},
		{"directional light", func(c *Config) { c.Scene.Lights[0].Type = "directional" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "shader dir flag",
			setup: func() { *flagShaders = "/tmp/glsl" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Shaders.Dir != "/tmp/glsl" {
					t.Errorf("expected shader dir /tmp/glsl, got %s", cfg.Shaders.Dir)
				}
			},
			teardown: func() { *flagShaders = "" },
		},
		{
			name: "model flags append",
			setup: func() {
				_ = flagModels.Set("x.obj")
				_ = flagModels.Set("y.obj")
			},
			verify: func(t *testing.T, cfg *Config) {
				n := len(cfg.Scene.Models)
				if n != 3 || cfg.Scene.Models[n-1] != "y.obj" {
					t.Errorf("expected default model plus x.obj, y.obj, got %v", cfg.Scene.Models)
				}
			},
			teardown: func() { flagModels = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Scene.Models = []string{"scene.obj"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(loaded.Scene.Models) != 1 || loaded.Scene.Models[0] != "scene.obj" {
		t.Errorf("unexpected models after reload: %v", loaded.Scene.Models)
	}
	if loaded.Scene.Lights[1].Target != cfg.Scene.Lights[1].Target {
		t.Errorf("light target not preserved: %v", loaded.Scene.Lights[1].Target)
	}
}
