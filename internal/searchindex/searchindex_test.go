package searchindex

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/starford/boxgraph/internal/models"
)

func TestBuild(t *testing.T) {
	lg := models.NewLegend(models.LegendMetadata{}, models.Security{})
	lg.Boxes.Set("MainBox", &models.Box{ID: "MainBox", Path: "src/main.cpp", Category: "core-consensus", Description: "main"})
	lg.Boxes.Set("UtilBox", &models.Box{ID: "UtilBox", Path: "src/util.h", Category: "utilities", Description: "util"})

	emb := models.NewEmbeddingMap()
	emb.Set("UtilBox", models.Embedding{Embedding: []float64{0.1, 0.2}})
	emb.Set("MainBox", models.Embedding{Embedding: []float64{0.3, 0.4}})
	emb.Set("GhostBox", models.Embedding{Embedding: []float64{0.5}})

	idx := Build(lg, emb, 2, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	if idx.Metadata.TotalBoxes != 2 || idx.Metadata.EmbeddingDimensions != 2 {
		t.Errorf("metadata = %+v", idx.Metadata)
	}
	if idx.Vectors.Len() != 2 {
		t.Fatalf("vectors = %d, want 2", idx.Vectors.Len())
	}
	if first := idx.Vectors.Oldest(); first.Key != "UtilBox" {
		t.Errorf("first vector = %q, want embedding order", first.Key)
	}
	row, _ := idx.Vectors.Get("MainBox")
	if row.BoxPath != "src/main.cpp" || row.Category != "core-consensus" || row.Description != "main" {
		t.Errorf("row = %+v", row)
	}

	data, err := json.Marshal(idx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"searchCache":{}`) {
		t.Errorf("searchCache not serialized as {}: %s", data)
	}
}
