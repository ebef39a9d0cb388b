package report

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metadata "github.com/shii9/MetaNio/internal/Metadata"
	pipeline "github.com/shii9/MetaNio/internal/Pipeline"
)

func sampleResults() *pipeline.Results {
	return &pipeline.Results{
		Target:      "acme-corp.com",
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Documents: []metadata.View{
			{
				Path:     "/tmp/report.pdf",
				Filename: "report.pdf",
				Size:     2048,
				Type:     "pdf",
				Title:    "Budget Plan",
				Authors:  []string{"Jane Smith"},
				Device:   map[string]string{"Model": "Pixel 6", "Make": "Google"},
				All:      map[string]string{"PDF.Producer": "Ghostscript", "FileSize": "2048"},
			},
		},
		Entities: pipeline.EntitySummary{
			Users:  []string{"Jane Smith"},
			Emails: []string{"jane@acme-corp.com"},
		},
	}
}

func TestWriteTextReport(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteText(sampleResults(), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Document Metadata Report for acme-corp.com")
	assert.Contains(t, text, "Jane Smith")
	assert.Contains(t, text, "report.pdf (pdf, 2048 bytes)")
	assert.Contains(t, text, "No software information available")
	assert.Contains(t, text, "No domain registration information available")

	// All-metadata keys and device fields come out sorted.
	assert.Less(t, strings.Index(text, "FileSize"), strings.Index(text, "PDF.Producer"))
	assert.Less(t, strings.Index(text, "Device Make"), strings.Index(text, "Device Model"))
}

func TestWriteJSONReport(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteJSON(sampleResults(), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "acme-corp.com", decoded["target"])

	docs, ok := decoded["documents"].([]any)
	require.True(t, ok)
	require.Len(t, docs, 1)
}
