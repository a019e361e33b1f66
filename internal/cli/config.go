package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/forPelevin/tempocut/internal/pipeline"
)

// settings is the merged view of defaults, config file, environment and
// flags, in increasing order of precedence.
type settings struct {
	Speed          float64
	Length         int
	Out            string
	Ext            string
	FFmpeg         string
	FFprobe        string
	SegmentTimeout time.Duration
	Manifest       bool
	Tags           bool
	LogLevel       string
}

type fileConfig struct {
	Speed          *float64 `yaml:"speed"`
	Length         *int     `yaml:"length"`
	Out            string   `yaml:"out"`
	Ext            string   `yaml:"ext"`
	FFmpeg         string   `yaml:"ffmpeg"`
	FFprobe        string   `yaml:"ffprobe"`
	SegmentTimeout string   `yaml:"segment_timeout"`
	Manifest       *bool    `yaml:"manifest"`
	Tags           *bool    `yaml:"tags"`
	LogLevel       string   `yaml:"log_level"`
}

func defaultSettings() settings {
	return settings{
		Speed:    pipeline.DefaultSpeed,
		Length:   pipeline.DefaultSegmentMinutes,
		Out:      ".",
		Ext:      pipeline.DefaultExt,
		FFmpeg:   "ffmpeg",
		FFprobe:  "ffprobe",
		Tags:     true,
		LogLevel: "info",
	}
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	s := defaultSettings()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("TEMPOCUT_CONFIG")
	}
	if path != "" {
		fc, err := loadConfigFile(path)
		if err != nil {
			return settings{}, err
		}
		if err := s.applyFile(fc); err != nil {
			return settings{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := s.applyEnv(os.Getenv); err != nil {
		return settings{}, err
	}
	if err := s.applyFlags(cmd); err != nil {
		return settings{}, err
	}
	s.Ext = normalizeExt(s.Ext)
	if err := s.validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

func (s settings) validate() error {
	if err := pipeline.ValidateParams(s.Speed, s.Length); err != nil {
		return err
	}
	if hclog.LevelFromString(s.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q (want trace, debug, info, warn, error or off)", s.LogLevel)
	}
	return nil
}

func loadConfigFile(path string) (fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

func (s *settings) applyFile(fc fileConfig) error {
	if fc.Speed != nil {
		s.Speed = *fc.Speed
	}
	if fc.Length != nil {
		s.Length = *fc.Length
	}
	setString(&s.Out, fc.Out)
	setString(&s.Ext, fc.Ext)
	setString(&s.FFmpeg, fc.FFmpeg)
	setString(&s.FFprobe, fc.FFprobe)
	setString(&s.LogLevel, fc.LogLevel)
	if fc.SegmentTimeout != "" {
		d, err := time.ParseDuration(fc.SegmentTimeout)
		if err != nil {
			return fmt.Errorf("segment_timeout: %w", err)
		}
		s.SegmentTimeout = d
	}
	if fc.Manifest != nil {
		s.Manifest = *fc.Manifest
	}
	if fc.Tags != nil {
		s.Tags = *fc.Tags
	}
	return nil
}

func (s *settings) applyEnv(getenv func(string) string) error {
	if v := getenv("TEMPOCUT_SPEED"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TEMPOCUT_SPEED: %w", err)
		}
		s.Speed = f
	}
	if v := getenv("TEMPOCUT_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TEMPOCUT_LENGTH: %w", err)
		}
		s.Length = n
	}
	if v := getenv("TEMPOCUT_SEGMENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TEMPOCUT_SEGMENT_TIMEOUT: %w", err)
		}
		s.SegmentTimeout = d
	}
	setString(&s.Out, getenv("TEMPOCUT_OUT"))
	setString(&s.FFmpeg, getenv("TEMPOCUT_FFMPEG"))
	setString(&s.FFprobe, getenv("TEMPOCUT_FFPROBE"))
	setString(&s.LogLevel, getenv("TEMPOCUT_LOG_LEVEL"))
	return nil
}

func (s *settings) applyFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	var err error
	if f.Changed("speed") {
		if s.Speed, err = f.GetFloat64("speed"); err != nil {
			return err
		}
	}
	if f.Changed("length") {
		if s.Length, err = f.GetInt("length"); err != nil {
			return err
		}
	}
	if f.Changed("segment-timeout") {
		if s.SegmentTimeout, err = f.GetDuration("segment-timeout"); err != nil {
			return err
		}
	}
	if f.Changed("manifest") {
		s.Manifest, _ = f.GetBool("manifest")
	}
	if f.Changed("tags") {
		s.Tags, _ = f.GetBool("tags")
	}
	for name, dst := range map[string]*string{
		"out":       &s.Out,
		"ext":       &s.Ext,
		"ffmpeg":    &s.FFmpeg,
		"ffprobe":   &s.FFprobe,
		"log-level": &s.LogLevel,
	} {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return pipeline.DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
