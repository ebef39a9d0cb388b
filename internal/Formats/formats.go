package formats

import (
	entities "github.com/shii9/MetaNio/internal/Entities"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

// Extractor pulls format-specific metadata and text out of one file. Results
// are folded into the record and the entity extractor; an error only means
// this format pass produced nothing, the file stays in the run.
type Extractor interface {
	Extract(path string, rec *metadata.Record, ents *entities.Extractor) error
}

var registry = map[string]Extractor{
	"pdf":  pdfExtractor{},
	"docx": docxExtractor{},
	"xlsx": xlsxExtractor{},
	"pptx": pptxExtractor{},
	"jpg":  imageExtractor{},
	"jpeg": imageExtractor{},
	"png":  imageExtractor{},
	"gif":  imageExtractor{},
	"tiff": imageExtractor{},
	"csv":  csvExtractor{},
	"doc":  oleExtractor{},
	"xls":  oleExtractor{},
	"ppt":  oleExtractor{},
}

// ForType returns the extractor registered for a lowercase extension.
func ForType(fileType string) (Extractor, bool) {
	e, ok := registry[fileType]
	return e, ok
}

// Supported reports whether an extension has a dedicated extractor.
func Supported(fileType string) bool {
	_, ok := registry[fileType]
	return ok
}

// scanText feeds free text through the entity extractor and mirrors the
// per-document findings onto the record.
func scanText(text string, rec *metadata.Record, ents *entities.Extractor) {
	if text == "" {
		return
	}
	found := ents.Scan(text)
	rec.AddEmails(found.Emails...)
	rec.AddURLs(found.URLs...)
	rec.AddPaths(found.Paths...)
	rec.AddHosts(found.Hosts...)
	rec.AddIPs(found.IPs...)
}
