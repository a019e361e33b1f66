package id3

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"

	"github.com/forPelevin/tempocut/internal/types"
)

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) ReadTags(path string) (types.Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Tags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return types.Tags{}, fmt.Errorf("read tags: %w", err)
	}
	return types.Tags{
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
	}, nil
}
