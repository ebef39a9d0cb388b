package formats

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rwcarlsen/goexif/exif"

	entities "github.com/shii9/MetaNio/internal/Entities"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

type imageExtractor struct{}

func (imageExtractor) Extract(path string, rec *metadata.Record, ents *entities.Extractor) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// PNG and GIF rarely carry EXIF; nothing to report.
		return nil
	}

	tagString := func(name exif.FieldName) string {
		tag, err := x.Get(name)
		if err != nil {
			return ""
		}
		s, err := tag.StringVal()
		if err != nil {
			return ""
		}
		return s
	}

	for _, name := range []exif.FieldName{exif.Make, exif.Model} {
		if v := tagString(name); v != "" {
			rec.SetDevice(string(name), v)
		}
	}
	if sw := tagString(exif.Software); sw != "" {
		rec.AddSoftware(sw)
		ents.Store().AddSoftware(sw)
	}
	if artist := tagString(exif.Artist); artist != "" {
		rec.AddAuthor(artist)
		ents.Store().AddUser(artist)
	}
	for _, name := range []exif.FieldName{exif.Copyright, exif.ImageDescription} {
		scanText(tagString(name), rec, ents)
	}

	if lat, lon, err := x.LatLong(); err == nil {
		rec.SetGPS(metadata.GPS{
			Latitude:  strconv.FormatFloat(lat, 'f', 6, 64),
			Longitude: strconv.FormatFloat(lon, 'f', 6, 64),
		})
	}
	if dt := tagString(exif.DateTimeOriginal); dt != "" {
		rec.SetCreationDate(dt)
	}
	return nil
}
