package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/render"
)

type fakeProcessor struct {
	mu    sync.Mutex
	seen  []pipeline.Upload
	fails map[string]error
}

func (f *fakeProcessor) Process(_ context.Context, up pipeline.Upload, stage constants.Stage, format constants.ReportFormat) (*pipeline.Result, render.Artifact, error) {
	f.mu.Lock()
	f.seen = append(f.seen, up)
	f.mu.Unlock()
	if err := f.fails[up.Name]; err != nil {
		return nil, render.Artifact{}, err
	}
	return &pipeline.Result{RequestID: "rid-" + up.Name},
		render.Artifact{Format: format, Filename: "output.json", Data: []byte(string(stage) + ":" + up.Name)},
		nil
}

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("data:"+f), 0o644))
	}
	return root
}

func TestDiscoverFiltersExtensionsAndHidden(t *testing.T) {
	root := writeTree(t, "a.pdf", "b.PNG", "notes.txt", "sub/c.docx", ".hidden/d.pdf", ".e.jpg")

	r := New(Config{SkipHidden: true}, &fakeProcessor{}, nil)
	paths, failed, stats, err := r.Discover(root)
	require.NoError(t, err)
	assert.Empty(t, failed)

	var rel []string
	for _, p := range paths {
		rp, _ := filepath.Rel(root, p)
		rel = append(rel, filepath.ToSlash(rp))
	}
	sort.Strings(rel)
	assert.Equal(t, []string{"a.pdf", "b.PNG", "sub/c.docx"}, rel)
	assert.Equal(t, uint32(3), stats.Matched)
}

func TestDiscoverCustomExtensions(t *testing.T) {
	root := writeTree(t, "a.pdf", "b.png")
	r := New(Config{Extensions: []string{".PDF"}}, &fakeProcessor{}, nil)
	paths, _, _, err := r.Discover(root)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "a.pdf", filepath.Base(paths[0]))
}

func TestDiscoverRequiresRoot(t *testing.T) {
	_, _, _, err := New(Config{}, &fakeProcessor{}, nil).Discover(" ")
	assert.Error(t, err)
}

func TestRunWritesOneArtifactPerFile(t *testing.T) {
	root := writeTree(t, "a.pdf", "sub/b.png", "skip.txt")
	out := t.TempDir()
	proc := &fakeProcessor{}

	r := New(Config{OutDir: out, Stage: constants.StageExtractedText, Languages: []string{"deu"}}, proc, nil, WithWorkers(2))
	results, stats, err := r.Run(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint32(2), stats.Succeeded)
	assert.Equal(t, uint32(0), stats.Failed)

	got, err := os.ReadFile(filepath.Join(out, "a.pdf.json"))
	require.NoError(t, err)
	assert.Equal(t, "EXTRACTED_TEXT:a.pdf", string(got))
	got, err = os.ReadFile(filepath.Join(out, "sub", "b.png.json"))
	require.NoError(t, err)
	assert.Equal(t, "EXTRACTED_TEXT:b.png", string(got))

	for _, up := range proc.seen {
		assert.Equal(t, []string{"deu"}, up.Languages)
		assert.Equal(t, constants.MediaTypeForExt(filepath.Ext(up.Name)), up.MediaType)
	}
	for _, res := range results {
		assert.Equal(t, "rid-"+filepath.Base(res.Path), res.RequestID)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	root := writeTree(t, "bad.pdf", "good.pdf")
	out := t.TempDir()
	proc := &fakeProcessor{fails: map[string]error{
		"bad.pdf": common.NewExtractionError(common.SourceMalformedDocument, "bad xref", errors.New("eof")),
	}}

	results, stats, err := New(Config{OutDir: out}, proc, nil, WithWorkers(1)).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Failed)

	require.Len(t, results, 2)
	assert.Equal(t, "bad.pdf", filepath.Base(results[0].Path))
	assert.Contains(t, results[0].Err, common.CodeExtraction)
	assert.Empty(t, results[0].Output)
	assert.Equal(t, filepath.Join(out, "good.pdf.json"), results[1].Output)
	assert.NoFileExists(t, filepath.Join(out, "bad.pdf.json"))
}

func TestRunCanceled(t *testing.T) {
	root := writeTree(t, "a.pdf", "b.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, _, err := New(Config{OutDir: t.TempDir()}, &fakeProcessor{}, nil).Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 2)
}
