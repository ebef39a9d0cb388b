package formats

import (
	"archive/zip"
	"fmt"
	"strings"

	entities "github.com/shii9/MetaNio/internal/Entities"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

type docxExtractor struct{}

func (docxExtractor) Extract(path string, rec *metadata.Record, ents *entities.Extractor) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open docx %s: %w", path, err)
	}
	defer zr.Close()

	applyOOXMLProps(&zr.Reader, rec, ents)

	text := zipPartText(&zr.Reader, func(name string) bool {
		return name == "word/document.xml" ||
			strings.HasPrefix(name, "word/header") ||
			strings.HasPrefix(name, "word/footer")
	})
	scanText(text, rec, ents)
	return nil
}

// applyOOXMLProps folds the shared docProps parts into the record. Both parts
// are optional in the package format.
func applyOOXMLProps(zr *zip.Reader, rec *metadata.Record, ents *entities.Extractor) {
	var core coreProps
	if err := readZipPart(zr, "docProps/core.xml", &core); err == nil {
		for _, who := range []string{core.Creator, core.LastModifiedBy} {
			who = strings.TrimSpace(who)
			if who == "" {
				continue
			}
			rec.AddAuthor(who)
			ents.Store().AddUser(who)
		}
		rec.SetTitle(core.Title)
		rec.SetSubject(firstNonEmpty(core.Subject, core.Description))
		rec.SetCreationDate(core.Created)
		rec.SetModificationDate(core.Modified)
		scanText(core.Keywords, rec, ents)
	}

	var app appProps
	if err := readZipPart(zr, "docProps/app.xml", &app); err == nil {
		if sw := strings.TrimSpace(app.Application); sw != "" {
			rec.AddSoftware(sw)
			ents.Store().AddSoftware(sw)
		}
		for _, who := range []string{app.Company, app.Manager} {
			if who = strings.TrimSpace(who); who != "" {
				ents.Store().AddUser(who)
			}
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
