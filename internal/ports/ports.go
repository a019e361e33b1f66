package ports

import (
	"context"

	"github.com/forPelevin/tempocut/internal/domain/tempo"
	"github.com/forPelevin/tempocut/internal/types"
)

type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// TranscodeJob describes a single ffmpeg run for one segment.
type TranscodeJob struct {
	Input    string
	Output   string
	Start    float64
	Duration float64
	Chain    tempo.Chain
}

type Transcoder interface {
	TranscodeSegment(ctx context.Context, job TranscodeJob, logf func(format string, args ...any)) types.SegmentResult
}

type TagReader interface {
	ReadTags(path string) (types.Tags, error)
}
