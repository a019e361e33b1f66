package ffmpeg

import (
	"regexp"
	"strings"

	"github.com/forPelevin/tempocut/internal/types"
)

const progressPrefix = "out_time="

// reDiagnostic matches ffmpeg output worth surfacing even when the run
// exits zero.
var reDiagnostic = regexp.MustCompile(`Error|Invalid`)

// ClassifyLine reports whether an ffmpeg output line should be forwarded and
// as what. Progress keys other than out_time are dropped.
func ClassifyLine(line string) (types.LineKind, bool) {
	switch {
	case strings.HasPrefix(line, progressPrefix):
		return types.LineProgress, true
	case reDiagnostic.MatchString(line):
		return types.LineDiagnostic, true
	default:
		return 0, false
	}
}
