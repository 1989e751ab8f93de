// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all application configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Field     FieldConfig     `yaml:"field"`
	Morph     MorphConfig     `yaml:"morph"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Charge    ChargeConfig    `yaml:"charge"`
	Gesture   GestureConfig   `yaml:"gesture"`
	Vision    VisionConfig    `yaml:"vision"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Render    RenderConfig    `yaml:"render"`
	Grid      GridConfig      `yaml:"grid"`
	Effects   EffectsConfig   `yaml:"effects"`
	Audio     AudioConfig     `yaml:"audio"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// CameraConfig holds the orbit camera settings.
type CameraConfig struct {
	Distance        float64 `yaml:"distance"`
	FOV             float64 `yaml:"fov"` // vertical field of view in degrees
	MinDistance     float64 `yaml:"min_distance"`
	MaxDistance     float64 `yaml:"max_distance"`
	RotateSpeed     float64 `yaml:"rotate_speed"`
	AutoRotateSpeed float64 `yaml:"auto_rotate_speed"` // radians per second in FUTURE/PAST
}

// FieldConfig holds particle buffer parameters.
type FieldConfig struct {
	Count     int     `yaml:"count"`
	SpaceSize float64 `yaml:"space_size"` // radius of the RANDOM fill
}

// MorphConfig holds FUTURE/PAST morph parameters.
type MorphConfig struct {
	LerpFactor      float64 `yaml:"lerp_factor"`
	JitterAmplitude float64 `yaml:"jitter_amplitude"`
	NeutralColor    float64 `yaml:"neutral_color"`
	RotationSpeed   float64 `yaml:"rotation_speed"` // radians per frame
}

// PhysicsConfig holds EVOCA force integration parameters.
type PhysicsConfig struct {
	ChargeEpsilon    float64    `yaml:"charge_epsilon"`
	Attraction       float64    `yaml:"attraction"`        // scaled by charge
	Turbulence       float64    `yaml:"turbulence"`        // scaled by charge
	CoreRadius       float64    `yaml:"core_radius"`       // repulsion below this distance
	CoreStrength     float64    `yaml:"core_strength"`     // repulsion strength
	ChargedDamping   float64    `yaml:"charged_damping"`   // velocity multiplier while charging
	ChargedColorRate float64    `yaml:"charged_color_rate"`
	ChargedColorLow  [3]float64 `yaml:"charged_color_low"`  // hue at charge 0
	ChargedColorHigh [3]float64 `yaml:"charged_color_high"` // hue at charge 1
	ExplodeMinSpeed  float64    `yaml:"explode_min_speed"`
	ExplodeMaxSpeed  float64    `yaml:"explode_max_speed"`
	HomeStrength     float64    `yaml:"home_strength"` // idle restoring force
	FlowStrength     float64    `yaml:"flow_strength"`
	IdleDamping      float64    `yaml:"idle_damping"`
	IdleColorRate    float64    `yaml:"idle_color_rate"`
	BaseColor        float64    `yaml:"base_color"`
}

// ChargeConfig holds charge state machine parameters.
type ChargeConfig struct {
	Variant          string  `yaml:"variant"` // "gated" (default) or "classic"
	Increment        float64 `yaml:"increment"`
	OpenDecrement    float64 `yaml:"open_decrement"`
	UnknownDecrement float64 `yaml:"unknown_decrement"`
	Threshold        float64 `yaml:"threshold"`
}

// GestureConfig holds gesture classifier parameters.
type GestureConfig struct {
	CurlMultiplier float64 `yaml:"curl_multiplier"`
}

// VisionConfig holds hand tracking and camera device parameters.
type VisionConfig struct {
	Device     string  `yaml:"device"` // "pointer" or "replay"
	ReplayPath string  `yaml:"replay_path"`
	ReplayLoop bool    `yaml:"replay_loop"`
	FPS        float64 `yaml:"fps"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
}

// OracleConfig holds the generative text/shape API parameters.
type OracleConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSec  float64 `yaml:"timeout_sec"`
	APIKeyEnv   string  `yaml:"api_key_env"` // environment variable holding the key
}

// RenderConfig holds render surface parameters.
type RenderConfig struct {
	PointSize      float64 `yaml:"point_size"`
	PointSizeEvoca float64 `yaml:"point_size_evoca"`
	Opacity        float64 `yaml:"opacity"`
	Additive       bool    `yaml:"additive"`
	Background     [3]int  `yaml:"background"`
}

// GridConfig holds the floor/ceiling point grid parameters.
type GridConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Spacing      float64 `yaml:"spacing"`
	Extent       float64 `yaml:"extent"`
	FloorY       float64 `yaml:"floor_y"`
	CeilingY     float64 `yaml:"ceiling_y"`
	FloorKeep    float64 `yaml:"floor_keep"`   // fraction of floor points kept
	CeilingKeep  float64 `yaml:"ceiling_keep"` // fraction of ceiling points kept
	NoiseScale   float64 `yaml:"noise_scale"`
	PointOpacity float64 `yaml:"point_opacity"`
}

// EffectsConfig holds explosion effect parameters.
type EffectsConfig struct {
	RingLifetime  int     `yaml:"ring_lifetime"` // frames
	RingSpeed     float64 `yaml:"ring_speed"`    // radius growth per frame
	Sparks        int     `yaml:"sparks"`
	SparkLifetime int     `yaml:"spark_lifetime"`
	SparkSpeed    float64 `yaml:"spark_speed"`
	SparkDrag     float64 `yaml:"spark_drag"`
}

// AudioConfig holds audio cue parameters.
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	SampleRate   int     `yaml:"sample_rate"`
	MasterVolume float64 `yaml:"master_volume"`
	HumBaseFreq  float64 `yaml:"hum_base_freq"`
	HumMaxFreq   float64 `yaml:"hum_max_freq"`
	BurstMillis  int     `yaml:"burst_millis"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// LoggingConfig holds log output parameters.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty = stdout only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT          float64 // seconds per frame at the target FPS
	Aspect      float64 // screen width / height
	ViewHeight  float64 // visible world height at the camera distance
	ViewWidth   float64 // visible world width at the camera distance
	OracleKey   string  // API key read from Oracle.APIKeyEnv
	ClassicMode bool    // Charge.Variant == "classic"
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values that would break the frame loop.
func (c *Config) validate() error {
	if c.Field.Count < 0 {
		return fmt.Errorf("field.count must be >= 0, got %d", c.Field.Count)
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("camera.fov must be in (0, 180), got %v", c.Camera.FOV)
	}
	switch c.Charge.Variant {
	case "", "gated", "classic":
	default:
		return fmt.Errorf("charge.variant must be gated or classic, got %q", c.Charge.Variant)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Screen.TargetFPS > 0 {
		c.Derived.DT = 1.0 / float64(c.Screen.TargetFPS)
	} else {
		c.Derived.DT = 1.0 / 60.0
	}
	c.Derived.Aspect = float64(c.Screen.Width) / float64(c.Screen.Height)

	// Visible extent of the z=0 plane seen from the camera distance
	halfFov := c.Camera.FOV * math.Pi / 360
	c.Derived.ViewHeight = 2 * c.Camera.Distance * math.Tan(halfFov)
	c.Derived.ViewWidth = c.Derived.ViewHeight * c.Derived.Aspect

	if c.Oracle.APIKeyEnv != "" {
		c.Derived.OracleKey = os.Getenv(c.Oracle.APIKeyEnv)
	}
	c.Derived.ClassicMode = c.Charge.Variant == "classic"
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
