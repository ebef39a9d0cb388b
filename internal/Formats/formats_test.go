package formats

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entities "github.com/shii9/MetaNio/internal/Entities"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

func writeZip(t *testing.T, name string, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for member, content := range parts {
		w, err := zw.Create(member)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func newHarness() (*metadata.Record, *entities.Extractor) {
	store := metadata.NewStore()
	rec := store.Ensure("/tmp/fixture", 0)
	return rec, entities.NewExtractor(entities.NewStore())
}

const coreXML = `<?xml version="1.0"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
 xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
  <dc:creator>jsmith</dc:creator>
  <cp:lastModifiedBy>Jane Smith</cp:lastModifiedBy>
  <dc:title>Budget Plan</dc:title>
  <dc:subject>finance</dc:subject>
  <dcterms:created>2023-04-01T10:00:00Z</dcterms:created>
  <dcterms:modified>2023-05-01T11:00:00Z</dcterms:modified>
</cp:coreProperties>`

const appXML = `<?xml version="1.0"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
  <Application>Microsoft Office Word</Application>
  <Company>Acme Corp</Company>
</Properties>`

func TestDocxExtractorReadsPropsAndBody(t *testing.T) {
	body := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p><w:r><w:t>Contact jsmith@acme-corp.com from fileserver01</w:t></w:r></w:p></w:body>
</w:document>`
	path := writeZip(t, "report.docx", map[string]string{
		"docProps/core.xml": coreXML,
		"docProps/app.xml":  appXML,
		"word/document.xml": body,
	})

	rec, ents := newHarness()
	require.NoError(t, docxExtractor{}.Extract(path, rec, ents))

	view := rec.Snapshot()
	assert.ElementsMatch(t, []string{"jsmith", "Jane Smith"}, view.Authors)
	assert.Equal(t, []string{"Microsoft Office Word"}, view.Software)
	assert.Equal(t, "Budget Plan", view.Title)
	assert.Equal(t, "finance", view.Subject)
	assert.Equal(t, "2023-04-01T10:00:00Z", view.CreationDate)
	assert.Contains(t, view.Emails, "jsmith@acme-corp.com")
	assert.Contains(t, view.Hosts, "fileserver01")
	assert.Contains(t, ents.Store().Domains(), "acme-corp.com")
}

func TestPptxExtractorReadsSlides(t *testing.T) {
	slide := `<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <a:t>Server at 203.0.113.5</a:t>
</p:sld>`
	path := writeZip(t, "deck.pptx", map[string]string{
		"docProps/core.xml":     coreXML,
		"ppt/slides/slide1.xml": slide,
	})

	rec, ents := newHarness()
	require.NoError(t, pptxExtractor{}.Extract(path, rec, ents))
	assert.Contains(t, rec.Snapshot().IPs, "203.0.113.5")
}

func TestCSVExtractorScansCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	content := "\xEF\xBB\xBFname,email\njane,jane@acme-corp.com\nbob,bob@acme-corp.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rec, ents := newHarness()
	require.NoError(t, csvExtractor{}.Extract(path, rec, ents))
	assert.ElementsMatch(t, []string{"jane@acme-corp.com", "bob@acme-corp.com"}, rec.Snapshot().Emails)
}

func TestPDFLiteralStrings(t *testing.T) {
	pdf := "%PDF-1.4\n1 0 obj\n<< /Length 44 >>\nstream\nBT (Written by jsmith@acme-corp.com) Tj ET\nendstream\nendobj\n%%EOF\n"
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte(pdf), 0o644))

	text := pdfLiteralStrings(path)
	assert.Contains(t, text, "jsmith@acme-corp.com")
}

func TestDecodePDFDate(t *testing.T) {
	assert.Equal(t, "2023-04-01 10:30", decodePDFDate("D:20230401103000+02'00'"))
	assert.Equal(t, "2023-04-01", decodePDFDate("D:20230401"))
	assert.Equal(t, "", decodePDFDate(""))
}

func TestRegistryCoversExpectedTypes(t *testing.T) {
	for _, ext := range []string{"pdf", "docx", "xlsx", "pptx", "jpg", "csv", "doc"} {
		assert.True(t, Supported(ext), ext)
	}
	assert.False(t, Supported("exe"))
}
