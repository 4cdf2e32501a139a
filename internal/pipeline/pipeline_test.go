package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/boxgraph/internal/legend"
	"github.com/starford/boxgraph/internal/models"
	"github.com/starford/boxgraph/internal/storage"
	"github.com/starford/boxgraph/internal/testutil"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newPipeline(t *testing.T, root string) *Pipeline {
	t.Helper()
	p, err := New(Config{
		Root:      root,
		Include:   []string{"src/**/*.cpp", "src/**/*.h", "*.md"},
		Exclude:   []string{".git"},
		OutputDir: filepath.Join(root, "project-knowledge"),
		Project:   legend.Project{Name: "AumCoin", Protocol: "City of Boxes v1.0"},
		Security:  models.Security{Phase1Complete: true, Phase2Pending: []string{"OpenSSL 3.x"}},
		KeyBoxes:  []string{"MainBox"},
	},
		WithLogger(testutil.Logger(t)),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return p
}

func TestRunScenario(t *testing.T) {
	root := testutil.WriteTree(t, testutil.ScenarioFiles())
	p := newPipeline(t, root)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 2, res.Boxes)
	assert.Equal(t, 2, res.Embeddings)
	assert.Equal(t, 2, res.Templates)

	store, err := storage.NewFS(p.OutputDir())
	require.NoError(t, err)

	var lg models.Legend
	require.NoError(t, storage.ReadJSON(store, models.LegendFile, &lg))

	mainBox, ok := lg.Boxes.Get("MainBox")
	require.True(t, ok, "MainBox missing")
	assert.Equal(t, "src/main.cpp", mainBox.Path)
	assert.Equal(t, "core-consensus", mainBox.Category)
	assert.Equal(t, `Main entry point for the node include "util.h"`, mainBox.Description)
	assert.Equal(t, []string{"Start"}, mainBox.Interface.Functions)
	assert.Equal(t, []string{"CMain"}, mainBox.Interface.Classes)
	assert.Equal(t, []string{"util.h"}, mainBox.Dependencies)
	assert.Equal(t, models.EmbeddingInfo{Available: true, Model: "lumen-bridge-v1", Dimensions: 16}, mainBox.Embedding)

	util, ok := lg.Boxes.Get("UtilBox")
	require.True(t, ok, "UtilBox missing")
	assert.Equal(t, "utilities", util.Category)
	assert.Equal(t, []string{"Log"}, util.Interface.Functions)

	deps, _ := lg.Dependencies.Get("util.h")
	assert.Equal(t, []string{"MainBox"}, deps)
	assert.Equal(t, "2025-03-04T05:06:07.000Z", lg.Metadata.Created)
	assert.Equal(t, 2, lg.Metadata.TotalFiles)

	emb := models.NewEmbeddingMap()
	require.NoError(t, storage.ReadJSON(store, models.EmbeddingsFile, emb))
	rec, ok := emb.Get("MainBox")
	require.True(t, ok)
	assert.Len(t, rec.Embedding, 16)
	assert.Equal(t, "lumen-bridge-v1", rec.Model)

	var idx models.SearchIndex
	require.NoError(t, storage.ReadJSON(store, models.SearchIndexFile, &idx))
	assert.Equal(t, 2, idx.Vectors.Len())
	assert.Equal(t, 16, idx.Metadata.EmbeddingDimensions)

	summary, err := store.Read(models.SummaryFile)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "### MainBox\n**Path:** `src/main.cpp`")
}

func TestRunIsDeterministic(t *testing.T) {
	root := testutil.WriteTree(t, testutil.ScenarioFiles())
	p := newPipeline(t, root)

	read := func() map[string]string {
		out := map[string]string{}
		for _, name := range []string{models.LegendFile, models.EmbeddingsFile, models.SearchIndexFile, models.TemplatesFile, models.SummaryFile} {
			data, err := os.ReadFile(filepath.Join(p.OutputDir(), name))
			require.NoError(t, err)
			out[name] = string(data)
		}
		return out
	}

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	first := read()

	// The second run sees the summary written by the first; it must not be analyzed.
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, first, read())
}

func TestRunFailsOnMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	p, err := New(Config{Root: root, Include: []string{"*.cpp"}, OutputDir: filepath.Join(t.TempDir(), "out")},
		WithLogger(testutil.Logger(t)))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	assert.ErrorContains(t, err, "pipeline: discover")
}

func TestRunSkipsOnlyTheOutputDirectory(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"src/layout.cpp":  "int Layout() { return 0; }\n",
		"src/timeout.cpp": "int Timeout() { return 0; }\n",
		"src/main.cpp":    "int main() { return 0; }\n",
	})
	p, err := New(Config{
		Root:      root,
		Include:   []string{"src/**/*.cpp"},
		OutputDir: filepath.Join(root, "out"),
		Project:   legend.Project{Name: "AumCoin", Protocol: "City of Boxes v1.0"},
	},
		WithLogger(testutil.Logger(t)),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Files)
	for _, id := range []string{"LayoutBox", "TimeoutBox", "MainBox"} {
		_, ok := res.Legend.Boxes.Get(id)
		assert.True(t, ok, "%s missing", id)
	}

	// A rebuild must not pick up its own artifacts.
	res, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Files)
}

func TestOutputUnderRoot(t *testing.T) {
	tests := []struct {
		root, out string
		want      string
		ok        bool
	}{
		{"/repo", "/repo/project-knowledge", "project-knowledge", true},
		{"/repo", "/repo/a/b", "a/b", true},
		{"/repo", "/repo", "", false},
		{"/repo", "/elsewhere/out", "", false},
		{"/repo", "/repo-knowledge", "", false},
	}
	for _, tt := range tests {
		got, ok := outputUnderRoot(tt.root, tt.out)
		if got != tt.want || ok != tt.ok {
			t.Errorf("outputUnderRoot(%q, %q) = %q, %v, want %q, %v", tt.root, tt.out, got, ok, tt.want, tt.ok)
		}
	}
}
