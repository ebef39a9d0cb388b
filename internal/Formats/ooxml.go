package formats

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// coreProps maps docProps/core.xml. Element names are matched without their
// namespace prefixes.
type coreProps struct {
	Creator        string `xml:"creator"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Title          string `xml:"title"`
	Subject        string `xml:"subject"`
	Description    string `xml:"description"`
	Keywords       string `xml:"keywords"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
}

// appProps maps docProps/app.xml.
type appProps struct {
	Application string `xml:"Application"`
	Company     string `xml:"Company"`
	Manager     string `xml:"Manager"`
}

func readZipPart(zr *zip.Reader, name string, dest any) error {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return xml.NewDecoder(rc).Decode(dest)
	}
	return fmt.Errorf("part %s not present", name)
}

// textInXML collects the character data of every element literally named "t",
// which covers Word runs (w:t) and Drawing runs (a:t) alike.
func textInXML(r io.Reader) string {
	dec := xml.NewDecoder(r)
	var out strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			inText = false
		case xml.CharData:
			if inText {
				out.Write(t)
				out.WriteByte(' ')
			}
		}
	}
	return out.String()
}

// zipPartText extracts the visible text of zip members whose names match the
// given predicate.
func zipPartText(zr *zip.Reader, match func(name string) bool) string {
	var out strings.Builder
	for _, f := range zr.File {
		if !match(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		out.WriteString(textInXML(rc))
		rc.Close()
	}
	return out.String()
}
