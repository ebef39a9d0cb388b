package formats

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	entities "github.com/shii9/MetaNio/internal/Entities"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

type csvExtractor struct{}

func (csvExtractor) Extract(path string, rec *metadata.Record, ents *entities.Extractor) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	// Skip a UTF-8 BOM if present.
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var text strings.Builder
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows cost their own content only.
			continue
		}
		for _, cell := range row {
			text.WriteString(cell)
			text.WriteByte(' ')
		}
	}
	scanText(text.String(), rec, ents)
	return nil
}
