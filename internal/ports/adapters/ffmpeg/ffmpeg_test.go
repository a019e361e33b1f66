package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/tempocut/internal/domain/tempo"
	"github.com/forPelevin/tempocut/internal/ports"
	"github.com/forPelevin/tempocut/internal/types"
)

func TestSegmentArgs(t *testing.T) {
	job := ports.TranscodeJob{
		Input:    "/in/a.mp3",
		Output:   "/out/processed_audio/speed_8.0x_part002_a.mp3",
		Start:    900,
		Duration: 900,
		Chain:    tempo.Chain{2, 2, 2},
	}
	got := SegmentArgs(job)
	want := []string{
		"-hide_banner", "-nostdin", "-y",
		"-ss", "900.000",
		"-t", "900.000",
		"-i", "/in/a.mp3",
		"-progress", "pipe:1",
		"-vn",
		"-filter:a", "atempo=2,atempo=2,atempo=2",
		"/out/processed_audio/speed_8.0x_part002_a.mp3",
	}
	assert.Equal(t, want, got)
}

func TestSegmentArgs_EmptyChainOmitsFilter(t *testing.T) {
	got := SegmentArgs(ports.TranscodeJob{Input: "a.mp3", Output: "b.mp3", Duration: 60})
	assert.NotContains(t, got, "-filter:a")
	assert.Equal(t, "b.mp3", got[len(got)-1])

	// seek must precede the input
	ss, in := indexOf(got, "-ss"), indexOf(got, "-i")
	require.NotEqual(t, -1, ss)
	assert.Less(t, ss, in)
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		kind types.LineKind
		keep bool
	}{
		{"out_time=00:00:01.500000", types.LineProgress, true},
		{"out_time_us=1500000", 0, false},
		{"Error while decoding stream #0:0", types.LineDiagnostic, true},
		{"Invalid data found when processing input", types.LineDiagnostic, true},
		{"frame=0", 0, false},
		{"progress=continue", 0, false},
		{"error lowercase is ignored", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		kind, keep := ClassifyLine(tc.line)
		assert.Equal(t, tc.keep, keep, tc.line)
		assert.Equal(t, tc.kind, kind, tc.line)
	}
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("1000.500000\n")
	require.NoError(t, err)
	assert.Equal(t, 1000.5, d)

	for _, in := range []string{"", "N/A", "0", "-3", "abc\n12"} {
		_, err := parseDuration(in)
		assert.True(t, errors.Is(err, ErrProbeFailed), "input %q", in)
	}
}

func TestProbeDuration_FakeBinary(t *testing.T) {
	skipWindows(t)

	ok := fakeBin(t, "ffprobe", "echo 1000.5")
	a := New("", ok)
	d, err := a.ProbeDuration(context.Background(), "in.mp3")
	require.NoError(t, err)
	assert.Equal(t, 1000.5, d)

	bad := fakeBin(t, "ffprobe-bad", "echo 'in.mp3: No such file or directory' >&2\nexit 1")
	_, err = New("", bad).ProbeDuration(context.Background(), "in.mp3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProbeFailed))
	assert.Contains(t, err.Error(), "No such file or directory")

	_, err = New("", filepath.Join(t.TempDir(), "missing")).ProbeDuration(context.Background(), "in.mp3")
	assert.True(t, errors.Is(err, ErrProbeFailed))
}

func TestTranscodeSegment_ForwardsProgressAndErrors(t *testing.T) {
	skipWindows(t)

	bin := fakeBin(t, "ffmpeg", strings.Join([]string{
		`echo "frame=0"`,
		`echo "out_time=00:00:01.000000"`,
		`echo "Invalid data found when processing input" >&2`,
		`echo "progress=end"`,
		`exit 3`,
	}, "\n"))

	var logged []string
	res := New(bin, "").TranscodeSegment(context.Background(), ports.TranscodeJob{
		Input: "in.mp3", Output: "out.mp3", Duration: 60,
	}, collect(&logged))

	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, res.SawError)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, types.LineProgress, res.Lines[0].Kind)
	assert.Equal(t, types.LineDiagnostic, res.Lines[1].Kind)
	assert.Equal(t, []string{
		"    Progress: out_time=00:00:01.000000",
		"    Invalid data found when processing input",
	}, logged)
}

func TestTranscodeSegment_SuccessKeepsErrorFlag(t *testing.T) {
	skipWindows(t)

	bin := fakeBin(t, "ffmpeg", `echo "Error parsing metadata"`+"\nexit 0")
	res := New(bin, "").TranscodeSegment(context.Background(), ports.TranscodeJob{Duration: 1}, nil)
	assert.True(t, res.OK())
	assert.True(t, res.SawError)
	assert.Equal(t, 0, res.ExitCode)
}

func TestTranscodeSegment_LaunchFailure(t *testing.T) {
	res := New(filepath.Join(t.TempDir(), "no-ffmpeg"), "").
		TranscodeSegment(context.Background(), ports.TranscodeJob{Duration: 1}, nil)
	assert.Equal(t, types.StatusLaunchFailed, res.Status)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "start ffmpeg")
}

func TestTranscodeSegment_Cancelled(t *testing.T) {
	skipWindows(t)

	bin := fakeBin(t, "ffmpeg", "exec sleep 10")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := New(bin, "").TranscodeSegment(ctx, ports.TranscodeJob{Duration: 1}, nil)
	assert.Equal(t, types.StatusCancelled, res.Status)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestTranscodeSegment_Timeout(t *testing.T) {
	skipWindows(t)

	bin := fakeBin(t, "ffmpeg", "exec sleep 10")
	res := New(bin, "", WithSegmentTimeout(100*time.Millisecond)).
		TranscodeSegment(context.Background(), ports.TranscodeJob{Duration: 1}, nil)
	assert.Equal(t, types.StatusFailed, res.Status)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "timed out")
}

func fakeBin(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
	return p
}

func collect(dst *[]string) func(string, ...any) {
	return func(format string, args ...any) {
		*dst = append(*dst, fmt.Sprintf(format, args...))
	}
}

func skipWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fakes need a POSIX shell")
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
