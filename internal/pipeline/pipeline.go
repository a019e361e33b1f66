package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/tempocut/internal/domain/tempo"
	"github.com/forPelevin/tempocut/internal/ports"
	"github.com/forPelevin/tempocut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/tempocut/internal/ports/adapters/id3"
	"github.com/forPelevin/tempocut/internal/types"
	"github.com/forPelevin/tempocut/internal/usecase"
)

const (
	DefaultSpeed          = 1.5
	DefaultSegmentMinutes = 15
	DefaultExt            = ".mp3"

	manifestName = "manifest.json"
)

type Config struct {
	Inputs         []string
	OutDir         string
	SpeedFactor    float64
	SegmentMinutes int
	Ext            string

	// SegmentTimeout bounds each ffmpeg run. Zero means no limit.
	SegmentTimeout time.Duration
	WriteManifest  bool
	ReadTags       bool

	Logf   func(format string, args ...any)
	Logger hclog.Logger

	FFmpegPath  string
	FFprobePath string
}

func (c Config) Validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("no input files")
	}
	if err := ValidateParams(c.SpeedFactor, c.SegmentMinutes); err != nil {
		return err
	}
	if c.SegmentTimeout < 0 {
		return fmt.Errorf("segment timeout must be >= 0")
	}
	if fi, err := os.Stat(c.OutDir); err == nil && !fi.IsDir() {
		return fmt.Errorf("output path %s: not a directory", c.OutDir)
	}
	return nil
}

// ValidateParams checks the speed factor and segment length on their own,
// before any input is resolved.
func ValidateParams(speed float64, segmentMinutes int) error {
	if _, err := tempo.Build(speed); err != nil {
		return err
	}
	if segmentMinutes <= 0 {
		return &types.ConfigError{
			Field: "length",
			Value: strconv.Itoa(segmentMinutes),
			Err:   fmt.Errorf("%w: must be > 0 minutes", usecase.ErrInvalidLength),
		}
	}
	return nil
}

func Run(ctx context.Context, cfg Config) (types.BatchReport, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	// adapters
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath,
		ffmpeg.WithLogger(logger.Named("ffmpeg")),
		ffmpeg.WithSegmentTimeout(cfg.SegmentTimeout),
	)
	deps := usecase.Deps{
		Probe:      v,
		Transcoder: v,
	}
	if cfg.ReadTags {
		deps.Tags = id3.New()
	}

	uc := usecase.New(deps)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "."
	}
	batchID := uuid.New().String()
	logger.Info("batch starting", "batch", batchID, "files", len(cfg.Inputs), "speed", cfg.SpeedFactor, "length_min", cfg.SegmentMinutes)
	start := time.Now()

	res, err := uc.Run(ctx, usecase.Input{
		Files:          cfg.Inputs,
		SpeedFactor:    cfg.SpeedFactor,
		SegmentMinutes: cfg.SegmentMinutes,
		OutBaseDir:     outDir,
		Ext:            cfg.Ext,
		BatchID:        batchID,
		Logf:           cfg.Logf,
		Logger:         logger.Named("batch"),
	})
	if err != nil {
		return types.BatchReport{}, err
	}
	logger.Info("batch finished", "batch", batchID, "elapsed", time.Since(start).Round(time.Millisecond),
		"segments_ok", res.Report.SegmentsSucceeded, "segments_failed", res.Report.SegmentsFailed)

	if cfg.WriteManifest {
		if err := writeManifest(res.Report); err != nil {
			return res.Report, err
		}
		logger.Info("manifest written", "path", filepath.Join(res.Report.OutputDir, manifestName))
	}
	return res.Report, nil
}

func writeManifest(rep types.BatchReport) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(rep.OutputDir, manifestName), b, 0o644)
}

// ensure adapters implement ports
var _ ports.Prober = (*ffmpeg.Adapter)(nil)
var _ ports.Transcoder = (*ffmpeg.Adapter)(nil)
var _ ports.TagReader = (*id3.Adapter)(nil)
