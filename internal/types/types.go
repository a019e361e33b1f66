package types

import "time"

// Segment is one planned window of an input file.
type Segment struct {
	Index    int     // zero-based
	Start    float64 // seconds
	Duration float64 // seconds
	Name     string  // output file name, no directory
}

type SegmentStatus string

const (
	StatusOK           SegmentStatus = "ok"
	StatusFailed       SegmentStatus = "failed"
	StatusLaunchFailed SegmentStatus = "launch_failed"
	StatusCancelled    SegmentStatus = "cancelled"
)

type LineKind int

const (
	LineProgress LineKind = iota + 1
	LineDiagnostic
)

// Line is a transcoder output line that survived classification.
type Line struct {
	Kind LineKind
	Text string
}

type SegmentResult struct {
	Status   SegmentStatus
	ExitCode int
	Err      error
	Lines    []Line
	SawError bool
}

func (r SegmentResult) OK() bool { return r.Status == StatusOK }

type Tags struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}

func (t Tags) Empty() bool { return t.Title == "" && t.Artist == "" && t.Album == "" }

type SegmentReport struct {
	Index    int           `json:"index"`
	StartSec float64       `json:"start_sec"`
	DurSec   float64       `json:"duration_sec"`
	File     string        `json:"file"`
	Status   SegmentStatus `json:"status"`
	ExitCode int           `json:"exit_code,omitempty"`
	Error    string        `json:"error,omitempty"`
	SawError bool          `json:"saw_error,omitempty"`
}

type FileReport struct {
	Input       string          `json:"input"`
	DurationSec float64         `json:"duration_sec,omitempty"`
	ProbeError  string          `json:"probe_error,omitempty"`
	Tags        *Tags           `json:"tags,omitempty"`
	Segments    []SegmentReport `json:"segments,omitempty"`
}

// BatchReport accumulates the outcome of one batch. Counters are updated as
// each file and segment completes.
type BatchReport struct {
	ID                string       `json:"id"`
	StartedAt         time.Time    `json:"started_at"`
	FinishedAt        time.Time    `json:"finished_at"`
	SpeedFactor       float64      `json:"speed_factor"`
	SegmentMinutes    int          `json:"segment_minutes"`
	OutputDir         string       `json:"output_dir"`
	FilesAttempted    int          `json:"files_attempted"`
	FilesSkipped      int          `json:"files_skipped"`
	ProbeFailures     int          `json:"probe_failures"`
	FilesProcessed    int          `json:"files_processed"`
	SegmentsSucceeded int          `json:"segments_succeeded"`
	SegmentsFailed    int          `json:"segments_failed"`
	Cancelled         bool         `json:"cancelled,omitempty"`
	Files             []FileReport `json:"files"`
}
