package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/shii9/MetaNio/internal/Config"
	entities "github.com/shii9/MetaNio/internal/Entities"
	exiftool "github.com/shii9/MetaNio/internal/Exiftool"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
)

type cannedRunner struct{ out []byte }

func (c cannedRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return c.out, nil
}

func testPipeline(t *testing.T, cfg *config.Config, toolOutput string) *Pipeline {
	t.Helper()
	ents := entities.NewStore()
	return &Pipeline{
		cfg:     cfg,
		log:     zerolog.Nop(),
		tool:    exiftool.NewWithRunner("exiftool", cannedRunner{out: []byte(toolOutput)}),
		docs:    metadata.NewStore(),
		ents:    ents,
		scanner: entities.NewExtractor(ents),
	}
}

func TestExecuteLocalRun(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "contacts.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,email\njane,jane@acme-corp.com\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.exe"), []byte("x"), 0o644))

	cfg := &config.Config{LocalDir: dir, OutputDir: t.TempDir(), Workers: 2}
	p := testPipeline(t, cfg, `[{"Author":"Jane Smith","Producer":"LibreOffice 7.4"}]`)

	results, err := p.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, results.Documents, 1)
	doc := results.Documents[0]
	assert.Equal(t, "contacts.csv", doc.Filename)
	assert.Equal(t, []string{"Jane Smith"}, doc.Authors)
	assert.Equal(t, []string{"LibreOffice 7.4"}, doc.Software)
	assert.NotEmpty(t, doc.CreationDate)
	assert.Contains(t, doc.All, "filesystem.modification_time")
	assert.Contains(t, doc.All, "filesystem.permissions")

	assert.Contains(t, results.Entities.Emails, "jane@acme-corp.com")
	assert.Contains(t, results.Entities.Users, "Jane Smith")
	assert.Nil(t, results.Domain)
	assert.NotNil(t, results.Graph)
}

func TestCollectLocalFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	for _, name := range []string{"a.pdf", "b.txt", "nested/c.docx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	p := testPipeline(t, &config.Config{LocalDir: dir, Workers: 1}, `[{}]`)
	paths, err := p.collectLocal()
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestInterestingExt(t *testing.T) {
	assert.True(t, interestingExt("pdf"))
	assert.True(t, interestingExt("docx"))
	assert.False(t, interestingExt("exe"))
	assert.False(t, interestingExt(""))
}
