package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/forPelevin/tempocut/internal/pipeline"
)

func run(cmd *cobra.Command, inputs []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "tempocut",
		Level:  hclog.LevelFromString(s.LogLevel),
		Output: cmd.ErrOrStderr(),
	})

	files, err := pipeline.Discover(inputs, s.Ext, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintf(out, "No %s files found.\n", strings.ToUpper(strings.TrimPrefix(s.Ext, ".")))
		return nil
	}

	absOut, err := filepath.Abs(s.Out)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		Inputs:         files,
		OutDir:         absOut,
		SpeedFactor:    s.Speed,
		SegmentMinutes: s.Length,
		Ext:            s.Ext,
		SegmentTimeout: s.SegmentTimeout,
		WriteManifest:  s.Manifest,
		ReadTags:       s.Tags,
		Logf: func(format string, args ...any) {
			fmt.Fprintf(out, format+"\n", args...)
		},
		Logger:      logger,
		FFmpegPath:  s.FFmpeg,
		FFprobePath: s.FFprobe,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Found %d %s file(s) to process.\n", len(files), strings.ToUpper(strings.TrimPrefix(s.Ext, ".")))
	rep, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	if rep.Cancelled {
		return errors.New("interrupted")
	}
	return nil
}
