package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/tempocut/internal/ports"
	"github.com/forPelevin/tempocut/internal/types"
)

var ErrProbeFailed = errors.New("probe failed")

// waitDelay bounds how long Wait blocks on the output pipe after ffmpeg has
// been killed.
const waitDelay = 5 * time.Second

type Adapter struct {
	ffmpeg  string
	ffprobe string

	logger         hclog.Logger
	segmentTimeout time.Duration
}

type Option func(*Adapter)

func WithLogger(l hclog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSegmentTimeout bounds each transcoder run. Zero means no limit.
func WithSegmentTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.segmentTimeout = d }
}

func New(ffmpegPath, ffprobePath string, opts ...Option) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	a := &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, logger: hclog.NewNullLogger()}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	a.logger.Debug("running ffprobe", "bin", a.ffprobe, "args", args)

	cmd := exec.CommandContext(ctx, a.ffprobe, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	b, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %w%s", ErrProbeFailed, err, trailer(stderr.String()))
	}
	return parseDuration(string(b))
}

func parseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse duration %q: %w", ErrProbeFailed, s, err)
	}
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %q", ErrProbeFailed, s)
	}
	return sec, nil
}

// TranscodeSegment runs ffmpeg for one segment, forwarding progress and
// error lines to logf as they arrive.
func (a *Adapter) TranscodeSegment(ctx context.Context, job ports.TranscodeJob, logf func(format string, args ...any)) types.SegmentResult {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	parent := ctx
	if a.segmentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.segmentTimeout)
		defer cancel()
	}

	args := SegmentArgs(job)
	a.logger.Debug("running ffmpeg", "bin", a.ffmpeg, "args", args)

	pr, pw := io.Pipe()
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return types.SegmentResult{
			Status:   types.StatusLaunchFailed,
			ExitCode: -1,
			Err:      fmt.Errorf("start ffmpeg: %w", err),
		}
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		waitErr <- err
	}()

	var res types.SegmentResult
	sc := bufio.NewScanner(pr)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		kind, keep := ClassifyLine(line)
		if !keep {
			continue
		}
		res.Lines = append(res.Lines, types.Line{Kind: kind, Text: line})
		switch kind {
		case types.LineProgress:
			logf("    Progress: %s", line)
		case types.LineDiagnostic:
			res.SawError = true
			logf("    %s", line)
		}
	}
	if err := sc.Err(); err != nil {
		a.logger.Warn("reading ffmpeg output", "error", err)
		_, _ = io.Copy(io.Discard, pr)
	}

	err := <-waitErr
	switch {
	case err == nil:
		res.Status = types.StatusOK
	case parent.Err() != nil:
		res.Status = types.StatusCancelled
		res.ExitCode = -1
		res.Err = fmt.Errorf("ffmpeg interrupted: %w", parent.Err())
	case ctx.Err() != nil:
		res.Status = types.StatusFailed
		res.ExitCode = -1
		res.Err = fmt.Errorf("ffmpeg timed out after %s", a.segmentTimeout)
	default:
		res.Status = types.StatusFailed
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
		res.Err = fmt.Errorf("ffmpeg: %w", err)
	}
	return res
}

// SegmentArgs returns the ffmpeg arguments (without the binary) for job.
// Seeking happens on the input side, before -i.
func SegmentArgs(job ports.TranscodeJob) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-ss", fmtSeconds(job.Start),
		"-t", fmtSeconds(job.Duration),
		"-i", job.Input,
		"-progress", "pipe:1",
		"-vn",
	}
	if !job.Chain.Empty() {
		args = append(args, "-filter:a", job.Chain.Filter())
	}
	return append(args, job.Output)
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func trailer(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return "\n" + s
}
