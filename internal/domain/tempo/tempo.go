// Package tempo decomposes a speed factor into a chain of atempo stages.
// A single atempo stage only accepts multipliers in [MinStage, MaxStage].
package tempo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/forPelevin/tempocut/internal/types"
)

const (
	MinStage = 0.5
	MaxStage = 2.0

	unityEpsilon = 1e-9
)

var ErrInvalidSpeed = errors.New("invalid speed factor")

// Chain is an ordered list of atempo multipliers. An empty chain means the
// speed is unchanged.
type Chain []float64

// Build returns the chain whose stages multiply to s.
func Build(s float64) (Chain, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return nil, &types.ConfigError{
			Field: "speed",
			Value: strconv.FormatFloat(s, 'g', -1, 64),
			Err:   fmt.Errorf("%w: must be a finite number > 0", ErrInvalidSpeed),
		}
	}

	var c Chain
	for s > MaxStage {
		c = append(c, MaxStage)
		s /= MaxStage
	}
	for s < MinStage {
		c = append(c, MinStage)
		s /= MinStage
	}
	if math.Abs(s-1.0) > unityEpsilon {
		c = append(c, s)
	}
	return c, nil
}

func (c Chain) Empty() bool { return len(c) == 0 }

// Product multiplies the stages back together.
func (c Chain) Product() float64 {
	p := 1.0
	for _, v := range c {
		p *= v
	}
	return p
}

// Filter renders the chain as an ffmpeg audio filter graph, e.g.
// "atempo=2,atempo=1.5". Empty chains render as "".
func (c Chain) Filter() string {
	parts := make([]string, 0, len(c))
	for _, v := range c {
		parts = append(parts, "atempo="+strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}
