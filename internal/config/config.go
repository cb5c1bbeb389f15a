package config

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/LdDl/pointtrack-go/pointtrack"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prefix of environment variables overriding configuration, e.g. POINTTRACK_TRACKER_WINSIZE
const EnvPrefix = "POINTTRACK"

// Config is configuration of pointtrack application
type Config struct {
	LogLevel string        `mapstructure:"logLevel" validate:"oneof=trace debug info warn error"`
	Tracker  TrackerConfig `mapstructure:"tracker"`
	Features FeatureConfig `mapstructure:"features"`
	Export   ExportConfig  `mapstructure:"export"`
}

// TrackerConfig holds correspondence and editing settings
type TrackerConfig struct {
	WinSize             int     `mapstructure:"winSize" validate:"gte=3,lte=255"`
	MaxLevel            int     `mapstructure:"maxLevel" validate:"gte=0,lte=16"`
	MaxCount            int     `mapstructure:"maxCount" validate:"gte=1"`
	Epsilon             float64 `mapstructure:"epsilon" validate:"gt=0"`
	MinEigThreshold     float64 `mapstructure:"minEigThreshold" validate:"gte=0"`
	SubPixMaxCount      int     `mapstructure:"subPixMaxCount" validate:"gte=1,lte=100"`
	SubPixEpsilon       float64 `mapstructure:"subPixEpsilon" validate:"gt=0"`
	ProximityThreshold  float64 `mapstructure:"proximityThreshold" validate:"gte=0"`
	HistorySize         int     `mapstructure:"historySize" validate:"gte=0,lte=150"`
	ShouldTrack         bool    `mapstructure:"shouldTrack"`
	PauseOnInvalidPoint bool    `mapstructure:"pauseOnInvalidPoint"`
	MotionPrediction    bool    `mapstructure:"motionPrediction"`
	ClassificationBits  int     `mapstructure:"classificationBits" validate:"gte=0"`
	ValidColor          string  `mapstructure:"validColor" validate:"hexcolor"`
	InvalidColor        string  `mapstructure:"invalidColor" validate:"hexcolor"`
}

// FeatureConfig holds automatic seeding settings
type FeatureConfig struct {
	MaxCorners    int     `mapstructure:"maxCorners" validate:"gte=1"`
	QualityLevel  float64 `mapstructure:"qualityLevel" validate:"gt=0,lte=1"`
	MinDistance   float64 `mapstructure:"minDistance" validate:"gte=0"`
	SubPixHalfWin int     `mapstructure:"subPixHalfWin" validate:"gte=0,lte=64"`
}

// ExportConfig holds output locations
type ExportConfig struct {
	Dir         string `mapstructure:"dir" validate:"required"`
	OverlaysDir string `mapstructure:"overlaysDir"`
}

func setDefaults(v *viper.Viper) {
	defaults := pointtrack.DefaultParams()

	v.SetDefault("logLevel", "info")

	v.SetDefault("tracker.winSize", defaults.LK.WinSize)
	v.SetDefault("tracker.maxLevel", defaults.LK.MaxLevel)
	v.SetDefault("tracker.maxCount", defaults.LK.Criteria.MaxCount)
	v.SetDefault("tracker.epsilon", defaults.LK.Criteria.Epsilon)
	v.SetDefault("tracker.minEigThreshold", defaults.LK.MinEigThreshold)
	v.SetDefault("tracker.subPixMaxCount", defaults.SubPixCriteria.MaxCount)
	v.SetDefault("tracker.subPixEpsilon", defaults.SubPixCriteria.Epsilon)
	v.SetDefault("tracker.proximityThreshold", defaults.ProximityThreshold)
	v.SetDefault("tracker.historySize", defaults.HistorySize)
	v.SetDefault("tracker.shouldTrack", defaults.ShouldTrack)
	v.SetDefault("tracker.pauseOnInvalidPoint", defaults.PauseOnInvalidPoint)
	v.SetDefault("tracker.motionPrediction", defaults.MotionPrediction)
	v.SetDefault("tracker.classificationBits", defaults.ClassificationBits)
	v.SetDefault("tracker.validColor", hexColor(defaults.ValidColor))
	v.SetDefault("tracker.invalidColor", hexColor(defaults.InvalidColor))

	v.SetDefault("features.maxCorners", defaults.Features.MaxCorners)
	v.SetDefault("features.qualityLevel", defaults.Features.QualityLevel)
	v.SetDefault("features.minDistance", defaults.Features.MinDistance)
	v.SetDefault("features.subPixHalfWin", defaults.Features.SubPixHalfWin)

	v.SetDefault("export.dir", ".")
	v.SetDefault("export.overlaysDir", "")
}

// Load reads configuration from file (YAML, JSON or TOML by extension; skipped when path is empty),
// applies POINTTRACK_* environment overrides on top of defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "Can't read config file '%s'", path)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "Can't decode config")
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and parameters validator tags can not express
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "Invalid config")
	}
	if cfg.Tracker.WinSize%2 == 0 {
		return errors.Errorf("Invalid config: tracker.winSize must be odd, got %d", cfg.Tracker.WinSize)
	}
	if cfg.Tracker.ClassificationBits > pointtrack.UserStatusBits {
		return errors.Errorf("Invalid config: tracker.classificationBits must not exceed %d, got %d", pointtrack.UserStatusBits, cfg.Tracker.ClassificationBits)
	}
	return nil
}

// TrackerParams converts configuration into tracker parameters
func (cfg *Config) TrackerParams() (pointtrack.Params, error) {
	params := pointtrack.DefaultParams()
	params.LK.WinSize = cfg.Tracker.WinSize
	params.LK.MaxLevel = cfg.Tracker.MaxLevel
	params.LK.Criteria = pointtrack.TermCriteria{
		Type:     pointtrack.TermCount | pointtrack.TermEps,
		MaxCount: cfg.Tracker.MaxCount,
		Epsilon:  cfg.Tracker.Epsilon,
	}
	params.LK.MinEigThreshold = cfg.Tracker.MinEigThreshold
	params.SubPixCriteria = pointtrack.TermCriteria{
		Type:     pointtrack.TermCount | pointtrack.TermEps,
		MaxCount: cfg.Tracker.SubPixMaxCount,
		Epsilon:  cfg.Tracker.SubPixEpsilon,
	}
	params.ProximityThreshold = cfg.Tracker.ProximityThreshold
	params.HistorySize = cfg.Tracker.HistorySize
	params.ShouldTrack = cfg.Tracker.ShouldTrack
	params.PauseOnInvalidPoint = cfg.Tracker.PauseOnInvalidPoint
	params.MotionPrediction = cfg.Tracker.MotionPrediction
	params.ClassificationBits = cfg.Tracker.ClassificationBits
	params.Features = pointtrack.FeatureParams{
		MaxCorners:    cfg.Features.MaxCorners,
		QualityLevel:  cfg.Features.QualityLevel,
		MinDistance:   cfg.Features.MinDistance,
		SubPixHalfWin: cfg.Features.SubPixHalfWin,
	}
	var err error
	params.ValidColor, err = parseHexColor(cfg.Tracker.ValidColor)
	if err != nil {
		return params, errors.Wrap(err, "tracker.validColor")
	}
	params.InvalidColor, err = parseHexColor(cfg.Tracker.InvalidColor)
	if err != nil {
		return params, errors.Wrap(err, "tracker.invalidColor")
	}
	return params, nil
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseHexColor accepts #rgb and #rrggbb
func parseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 255}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = errors.Errorf("bad color '%s'", s)
	}
	if err != nil {
		return c, errors.Wrapf(err, "Can't parse color '%s'", s)
	}
	return c, nil
}
