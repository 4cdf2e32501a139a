// Package searchindex flattens the legend and embeddings into one lookup table.
package searchindex

import (
	"time"

	"github.com/starford/boxgraph/internal/models"
)

// Build creates the search index. Every embedding whose box is registered
// becomes one row; there is no structure beyond the flat map, so lookups
// are linear scans.
func Build(lg *models.Legend, embeddings *models.EmbeddingMap, dimensions int, now time.Time) *models.SearchIndex {
	idx := models.NewSearchIndex(models.SearchIndexMetadata{
		Created:             models.Timestamp(now),
		TotalBoxes:          lg.Boxes.Len(),
		EmbeddingDimensions: dimensions,
	})
	for pair := embeddings.Oldest(); pair != nil; pair = pair.Next() {
		box, ok := lg.Boxes.Get(pair.Key)
		if !ok || pair.Value.Embedding == nil {
			continue
		}
		idx.Vectors.Set(pair.Key, models.VectorEntry{
			Embedding:   pair.Value.Embedding,
			BoxPath:     box.Path,
			Category:    box.Category,
			Description: box.Description,
		})
	}
	return idx
}
