package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

type Window struct {
	Title  string `toml:"title"`
	X      uint32 `toml:"x"`
	Y      uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type Renderer struct {
	VertexShader   string     `toml:"vertex_shader"`
	FragmentShader string     `toml:"fragment_shader"`
	Validation     bool       `toml:"validation"`
	FrameSleepMS   int        `toml:"frame_sleep_ms"`
	ClearColor     [4]float32 `toml:"clear_color"`
}

type Assets struct {
	Dir            string `toml:"dir"`
	DefaultTexture string `toml:"default_texture"`
	Watch          bool   `toml:"watch"`
}

type Camera struct {
	FOVDegrees       float32 `toml:"fov_degrees"`
	Near             float32 `toml:"near"`
	Far              float32 `toml:"far"`
	RotateStep       float32 `toml:"rotate_step"`
	MouseSensitivity float32 `toml:"mouse_sensitivity"`
}

type Log struct {
	Level string `toml:"level"`
}

// Config is the engine configuration read from a TOML file.
type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Assets   Assets   `toml:"assets"`
	Camera   Camera   `toml:"camera"`
	Log      Log      `toml:"log"`
}

func Default() *Config {
	return &Config{
		Window: Window{
			Title:  "vkscene",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
		},
		Renderer: Renderer{
			VertexShader:   "shaders/vert.spv",
			FragmentShader: "shaders/frag.spv",
			Validation:     false,
			FrameSleepMS:   10,
			ClearColor:     [4]float32{0, 0, 0, 1},
		},
		Assets: Assets{
			Dir:            "assets",
			DefaultTexture: "white.png",
			Watch:          true,
		},
		Camera: Camera{
			FOVDegrees:       50,
			Near:             0.1,
			Far:              100,
			RotateStep:       0.05,
			MouseSensitivity: 0.005,
		},
		Log: Log{
			Level: "debug",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result. Keys missing
// from data keep the values already in cfg.
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return errors.Wrapf(err, "line %d column %d", row, col)
		}
		return err
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.Window.Width == 0 || c.Window.Height == 0:
		return errors.Newf("window size %dx%d is empty", c.Window.Width, c.Window.Height)
	case c.Renderer.VertexShader == "" || c.Renderer.FragmentShader == "":
		return errors.New("both shader paths are required")
	case c.Renderer.FrameSleepMS < 0:
		return errors.Newf("frame_sleep_ms %d is negative", c.Renderer.FrameSleepMS)
	case c.Assets.Dir == "":
		return errors.New("assets.dir is required")
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return errors.Newf("camera planes near=%v far=%v", c.Camera.Near, c.Camera.Far)
	case c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180:
		return errors.Newf("camera fov %v out of range", c.Camera.FOVDegrees)
	}
	return nil
}
