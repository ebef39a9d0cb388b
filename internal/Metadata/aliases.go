package metadata

import (
	"strings"

	entities "github.com/shii9/MetaNio/internal/Entities"
)

// Field name variants across tag groups and file formats. Each list is
// ordered; resolution is first-match-wins per canonical field.
var (
	authorFields = []string{
		"Author", "Creator", "Artist", "Owner", "By-line",
		"OwnerName", "Microsoft:Author", "XMP:Creator",
		"EXIF:Artist", "ID3:Artist", "PDF:Author",
	}
	softwareFields = []string{
		"Software", "Producer", "CreatorTool", "Generator",
		"Application", "SourceProgram", "PDF:Producer",
		"XMP:CreatorTool", "APP14:Adobe",
	}
	titleFields = []string{
		"Title", "DocumentName", "Headline", "ObjectName",
		"XMP:Title", "PDF:Title", "ID3:Title",
	}
	subjectFields = []string{
		"Subject", "Description", "Caption", "Comment",
		"XMP:Description", "PDF:Subject", "ID3:Comment",
	}
	creationDateFields = []string{
		"CreateDate", "DateTimeOriginal", "CreationDate",
		"DateCreated", "PDF:CreationDate", "XMP:CreateDate",
	}
	modificationDateFields = []string{
		"ModifyDate", "FileModifyDate", "ModificationDate",
		"PDF:ModDate", "XMP:ModifyDate",
	}
	gpsLatFields = []string{"GPSLatitude", "GPS:GPSLatitude", "XMP:GPSLatitude"}
	gpsLonFields = []string{"GPSLongitude", "GPS:GPSLongitude", "XMP:GPSLongitude"}
	gpsAltFields = []string{"GPSAltitude", "GPS:GPSAltitude", "XMP:GPSAltitude"}

	deviceFields = []string{
		"Model", "Make", "DeviceManufacturer", "DeviceModel",
		"EXIF:Make", "EXIF:Model", "XMP:Device",
	}
)

// lookupField resolves a possibly group-qualified field ("PDF:Author")
// against a nested metadata map. Absence is an expected outcome, not an
// error.
func lookupField(meta map[string]any, fieldPath string) (any, bool) {
	parts := strings.Split(fieldPath, ":")
	if len(parts) == 1 {
		v, ok := meta[fieldPath]
		return v, ok
	}
	var current any = meta
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func firstField(meta map[string]any, fields []string) (string, bool) {
	for _, f := range fields {
		if v, ok := lookupField(meta, f); ok {
			if s := renderScalar(v); strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}

// valueStrings renders a field that may be a scalar or a list of scalars.
func valueStrings(v any) []string {
	if list, ok := v.([]any); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := renderScalar(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := renderScalar(v); s != "" {
		return []string{s}
	}
	return nil
}

// ApplyAliases maps the external tool's raw metadata onto the canonical
// record attributes and feeds authors/software into the global entity sets.
// GPS coordinates are each resolved independently and combined when at
// least one is present.
func ApplyAliases(rec *Record, store *entities.Store, meta map[string]any) {
	for _, field := range authorFields {
		v, ok := lookupField(meta, field)
		if !ok {
			continue
		}
		for _, author := range valueStrings(v) {
			store.AddUser(author)
			rec.AddAuthor(author)
		}
	}

	for _, field := range softwareFields {
		v, ok := lookupField(meta, field)
		if !ok {
			continue
		}
		for _, sw := range valueStrings(v) {
			store.AddSoftware(sw)
			rec.AddSoftware(sw)
		}
	}

	if title, ok := firstField(meta, titleFields); ok {
		rec.SetTitle(title)
	}
	if subject, ok := firstField(meta, subjectFields); ok {
		rec.SetSubject(subject)
	}
	if created, ok := firstField(meta, creationDateFields); ok {
		rec.SetCreationDate(created)
	}
	if modified, ok := firstField(meta, modificationDateFields); ok {
		rec.SetModificationDate(modified)
	}

	var gps GPS
	gps.Latitude, _ = firstField(meta, gpsLatFields)
	gps.Longitude, _ = firstField(meta, gpsLonFields)
	gps.Altitude, _ = firstField(meta, gpsAltFields)
	rec.SetGPS(gps)

	for _, field := range deviceFields {
		if v, ok := lookupField(meta, field); ok {
			rec.SetDevice(field, renderScalar(v))
		}
	}
}
