package segments

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/forPelevin/tempocut/internal/types"
)

// Plan splits a file of duration seconds into windows of lengthMin minutes.
// Every window requests the full length; ffmpeg truncates the last one at
// end of stream. lengthMin <= 0 disables splitting.
func Plan(duration float64, lengthMin int, speed float64, inputPath string) []types.Segment {
	ls := float64(lengthMin) * 60

	n := 1
	if ls > 0 {
		n = int(math.Ceil(duration / ls))
	}
	if n < 1 {
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	ext := filepath.Ext(inputPath)

	out := make([]types.Segment, 0, n)
	for i := 0; i < n; i++ {
		seg := types.Segment{
			Index:    i,
			Start:    float64(i) * ls,
			Duration: ls,
			Name:     Name(speed, i, n, base, ext),
		}
		if ls <= 0 {
			seg.Start = 0
			seg.Duration = duration
		}
		out = append(out, seg)
	}
	return out
}

// Name builds the output file name for segment i of n. The part number is
// omitted when the file is not split.
func Name(speed float64, i, n int, base, ext string) string {
	if n > 1 {
		return fmt.Sprintf("speed_%sx_part%03d_%s%s", FormatFactor(speed), i+1, base, ext)
	}
	return fmt.Sprintf("speed_%sx_%s%s", FormatFactor(speed), base, ext)
}

// FormatFactor prints the shortest decimal form of f, always with a decimal
// point: 2 -> "2.0", 1.5 -> "1.5".
func FormatFactor(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
