package formats

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	entities "github.com/shii9/MetaNio/internal/Entities"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

type pdfExtractor struct{}

func (pdfExtractor) Extract(path string, rec *metadata.Record, ents *entities.Extractor) error {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return fmt.Errorf("read pdf %s: %w", path, err)
	}

	if ctx.Info != nil {
		dict, err := ctx.DereferenceDict(*ctx.Info)
		if err == nil && dict != nil {
			info := func(key string) string {
				if s := dict.StringEntry(key); s != nil {
					return strings.TrimSpace(*s)
				}
				return ""
			}

			if author := info("Author"); author != "" {
				rec.AddAuthor(author)
				ents.Store().AddUser(author)
				// "CORP\jsmith" style authors carry a plain username too.
				if i := strings.LastIndex(author, `\`); i >= 0 && i < len(author)-1 {
					ents.Store().AddUser(author[i+1:])
				}
			}
			for _, key := range []string{"Creator", "Producer"} {
				if sw := info(key); sw != "" {
					rec.AddSoftware(sw)
					ents.Store().AddSoftware(sw)
				}
			}
			rec.SetTitle(info("Title"))
			rec.SetSubject(info("Subject"))
			rec.SetCreationDate(decodePDFDate(info("CreationDate")))
			rec.SetModificationDate(decodePDFDate(info("ModDate")))
		}
	}

	scanText(pdfLiteralStrings(path), rec, ents)
	return nil
}

// decodePDFDate renders a "D:YYYYMMDDHHmmSS..." date as "YYYY-MM-DD HH:mm".
func decodePDFDate(raw string) string {
	raw = strings.TrimPrefix(raw, "D:")
	digits := strings.Builder{}
	for _, r := range raw {
		if r < '0' || r > '9' {
			break
		}
		digits.WriteRune(r)
	}
	d := digits.String()
	if len(d) < 8 {
		return raw
	}
	out := d[0:4] + "-" + d[4:6] + "-" + d[6:8]
	if len(d) >= 12 {
		out += " " + d[8:10] + ":" + d[10:12]
	}
	return out
}

// pdfLiteralStrings makes a best-effort pass over the raw file, inflating
// compressed streams and collecting parenthesized literal strings from the
// page content. Parsing failures simply yield less text.
func pdfLiteralStrings(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var text strings.Builder
	rest := raw
	for {
		start := bytes.Index(rest, []byte("stream"))
		if start < 0 {
			break
		}
		body := rest[start+len("stream"):]
		body = bytes.TrimLeft(body, "\r\n")
		end := bytes.Index(body, []byte("endstream"))
		if end < 0 {
			break
		}
		chunk := body[:end]
		if r, err := zlib.NewReader(bytes.NewReader(chunk)); err == nil {
			if inflated, err := io.ReadAll(r); err == nil {
				chunk = inflated
			}
			r.Close()
		}
		collectParenStrings(chunk, &text)
		rest = body[end+len("endstream"):]
	}
	return text.String()
}

func collectParenStrings(data []byte, out *strings.Builder) {
	depth := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\\':
			if depth > 0 && i+1 < len(data) {
				out.WriteByte(data[i+1])
			}
			i++
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
				if depth == 0 {
					out.WriteByte(' ')
				}
			}
		default:
			if depth > 0 {
				out.WriteByte(data[i])
			}
		}
	}
}
