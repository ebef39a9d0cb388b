package formats

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	entities "github.com/shii9/MetaNio/internal/Entities"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

type xlsxExtractor struct{}

func (xlsxExtractor) Extract(path string, rec *metadata.Record, ents *entities.Extractor) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()

	if props, err := f.GetDocProps(); err == nil && props != nil {
		for _, who := range []string{props.Creator, props.LastModifiedBy} {
			who = strings.TrimSpace(who)
			if who == "" {
				continue
			}
			rec.AddAuthor(who)
			ents.Store().AddUser(who)
		}
		rec.SetTitle(props.Title)
		rec.SetSubject(firstNonEmpty(props.Subject, props.Description))
		rec.SetCreationDate(props.Created)
		rec.SetModificationDate(props.Modified)
		scanText(props.Keywords, rec, ents)
	}

	if app, err := f.GetAppProps(); err == nil && app != nil {
		if sw := strings.TrimSpace(app.Application); sw != "" {
			rec.AddSoftware(sw)
			ents.Store().AddSoftware(sw)
		}
		if company := strings.TrimSpace(app.Company); company != "" {
			ents.Store().AddUser(company)
		}
	}

	var text strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell)
				text.WriteByte(' ')
			}
		}
	}
	scanText(text.String(), rec, ents)
	return nil
}
