package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/tempocut/internal/domain/segments"
	"github.com/forPelevin/tempocut/internal/domain/tempo"
	"github.com/forPelevin/tempocut/internal/ports"
	"github.com/forPelevin/tempocut/internal/types"
)

// OutputSubdir is created under the output base directory and receives every
// segment of the batch.
const OutputSubdir = "processed_audio"

var ErrInvalidLength = errors.New("invalid segment length")

type Deps struct {
	Probe      ports.Prober
	Transcoder ports.Transcoder
	Tags       ports.TagReader // optional
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Files          []string
	SpeedFactor    float64
	SegmentMinutes int
	OutBaseDir     string
	Ext            string // matched case-insensitively; defaults to ".mp3"
	BatchID        string

	Logf   func(format string, args ...any)
	Logger hclog.Logger
}

type Result struct {
	Report types.BatchReport
}

// Run processes in.Files in order. Per-file and per-segment failures are
// recorded in the report and never returned; only invalid parameters or an
// unusable output directory abort the batch.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	logger := in.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	ext := in.Ext
	if ext == "" {
		ext = ".mp3"
	}

	chain, err := tempo.Build(in.SpeedFactor)
	if err != nil {
		return Result{}, err
	}
	if in.SegmentMinutes <= 0 {
		return Result{}, &types.ConfigError{
			Field: "length",
			Value: strconv.Itoa(in.SegmentMinutes),
			Err:   fmt.Errorf("%w: must be > 0 minutes", ErrInvalidLength),
		}
	}

	rep := types.BatchReport{
		ID:             in.BatchID,
		StartedAt:      time.Now().UTC(),
		SpeedFactor:    in.SpeedFactor,
		SegmentMinutes: in.SegmentMinutes,
	}

	logf("Starting audio processing (batch %s)...", in.BatchID)
	outDir := filepath.Join(in.OutBaseDir, OutputSubdir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}
	rep.OutputDir = outDir
	logf("Output directory ensured: %s", outDir)
	if chain.Empty() {
		logger.Debug("speed unchanged, no tempo filter")
	} else {
		logger.Debug("tempo filter", "filter", chain.Filter())
	}

	for _, path := range in.Files {
		if ctx.Err() != nil {
			break
		}
		if !strings.EqualFold(filepath.Ext(path), ext) {
			rep.FilesSkipped++
			logger.Debug("skipping file with unexpected extension", "path", path)
			continue
		}
		fr := u.processFile(ctx, path, chain, in, outDir, &rep, logf, logger)
		rep.Files = append(rep.Files, fr)
	}

	if ctx.Err() != nil {
		rep.Cancelled = true
		logf("Processing interrupted.")
	}
	rep.FinishedAt = time.Now().UTC()
	logf("Audio processing complete.")
	logf("%s", Summary(rep))
	return Result{Report: rep}, nil
}

func (u Usecase) processFile(
	ctx context.Context,
	path string,
	chain tempo.Chain,
	in Input,
	outDir string,
	rep *types.BatchReport,
	logf func(string, ...any),
	logger hclog.Logger,
) types.FileReport {
	rep.FilesAttempted++
	fr := types.FileReport{Input: path}

	logf("")
	logf("Processing: %s", path)

	duration, err := u.d.Probe.ProbeDuration(ctx, path)
	if err != nil && ctx.Err() != nil {
		logger.Info("batch cancelled while probing", "path", path)
		logf("    Cancelled.")
		return fr
	}
	if err != nil {
		rep.ProbeFailures++
		fr.ProbeError = err.Error()
		logf("Error getting duration for %s: %v", filepath.Base(path), err)
		return fr
	}
	fr.DurationSec = duration
	rep.FilesProcessed++

	if u.d.Tags != nil {
		tags, err := u.d.Tags.ReadTags(path)
		switch {
		case err != nil:
			logger.Debug("no tags", "path", path, "error", err)
		case !tags.Empty():
			fr.Tags = &tags
			logf("  Tags: title=%q artist=%q album=%q", tags.Title, tags.Artist, tags.Album)
		}
	}

	plan := segments.Plan(duration, in.SegmentMinutes, in.SpeedFactor, path)
	logger.Debug("segment plan", "path", path, "duration", duration, "segments", len(plan))

	for _, seg := range plan {
		if ctx.Err() != nil {
			logger.Info("batch cancelled before segment", "path", path, "segment", seg.Index)
			break
		}

		outFile := filepath.Join(outDir, seg.Name)
		logf("  Segment %d/%d: Start %.1fs -> %s", seg.Index+1, len(plan), seg.Start, outFile)

		res := u.d.Transcoder.TranscodeSegment(ctx, ports.TranscodeJob{
			Input:    path,
			Output:   outFile,
			Start:    seg.Start,
			Duration: seg.Duration,
			Chain:    chain,
		}, logf)

		sr := types.SegmentReport{
			Index:    seg.Index,
			StartSec: seg.Start,
			DurSec:   seg.Duration,
			File:     filepath.ToSlash(seg.Name),
			Status:   res.Status,
			ExitCode: res.ExitCode,
			SawError: res.SawError,
		}
		if res.Err != nil {
			sr.Error = res.Err.Error()
		}
		fr.Segments = append(fr.Segments, sr)

		switch res.Status {
		case types.StatusOK:
			rep.SegmentsSucceeded++
			logf("    Done.")
		case types.StatusLaunchFailed:
			rep.SegmentsFailed++
			logf("    Error running FFmpeg: %v", res.Err)
		case types.StatusCancelled:
			rep.SegmentsFailed++
			logf("    Cancelled.")
		default:
			rep.SegmentsFailed++
			if res.ExitCode >= 0 {
				logf("    Failed with return code %d", res.ExitCode)
			} else {
				logf("    Failed: %v", res.Err)
			}
		}
	}
	return fr
}

// Summary renders the final counters on one line.
func Summary(rep types.BatchReport) string {
	return fmt.Sprintf(
		"Summary: %d file(s) attempted, %d processed, %d probe failure(s), %d skipped; segments: %d succeeded, %d failed",
		rep.FilesAttempted, rep.FilesProcessed, rep.ProbeFailures, rep.FilesSkipped,
		rep.SegmentsSucceeded, rep.SegmentsFailed,
	)
}
