package formats

import (
	"archive/zip"
	"fmt"
	"strings"

	entities "github.com/shii9/MetaNio/internal/Entities"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

type pptxExtractor struct{}

func (pptxExtractor) Extract(path string, rec *metadata.Record, ents *entities.Extractor) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open pptx %s: %w", path, err)
	}
	defer zr.Close()

	applyOOXMLProps(&zr.Reader, rec, ents)

	text := zipPartText(&zr.Reader, func(name string) bool {
		return strings.HasPrefix(name, "ppt/slides/slide") ||
			strings.HasPrefix(name, "ppt/notesSlides/notesSlide")
	})
	scanText(text, rec, ents)
	return nil
}
