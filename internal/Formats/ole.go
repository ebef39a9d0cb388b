package formats

import (
	"fmt"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"

	entities "github.com/shii9/MetaNio/internal/Entities"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

// oleExtractor handles the legacy compound-file formats (doc, xls, ppt) by
// reading the SummaryInformation property stream.
type oleExtractor struct{}

func (oleExtractor) Extract(path string, rec *metadata.Record, ents *entities.Extractor) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open ole %s: %w", path, err)
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return fmt.Errorf("parse compound file %s: %w", path, err)
	}

	props := msoleps.New()
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if !strings.Contains(entry.Name, "SummaryInformation") {
			continue
		}
		if err := props.Reset(entry); err != nil {
			continue
		}
		for _, p := range props.Property {
			applyOLEProperty(p.Name, p.T.String(), rec, ents)
		}
	}
	return nil
}

func applyOLEProperty(name, value string, rec *metadata.Record, ents *entities.Extractor) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	switch strings.ToLower(name) {
	case "author", "lastauthor", "last author", "last saved by":
		rec.AddAuthor(value)
		ents.Store().AddUser(value)
	case "appname", "application name":
		rec.AddSoftware(value)
		ents.Store().AddSoftware(value)
	case "title":
		rec.SetTitle(value)
	case "subject":
		rec.SetSubject(value)
	case "createtime", "create time", "created":
		rec.SetCreationDate(value)
	case "lastsavetime", "last save time", "lastsaved":
		rec.SetModificationDate(value)
	case "comments", "keywords", "company":
		scanText(value, rec, ents)
	}
}
