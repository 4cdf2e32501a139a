// Package report renders the human-readable knowledge graph summary.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/boxgraph/internal/models"
)

const categoryPreview = 5

// Summary renders KNOWLEDGE_GRAPH_SUMMARY.md. keyBoxes lists box ids to
// highlight; ids absent from the legend are skipped.
func Summary(lg *models.Legend, idx *models.SearchIndex, tpl *models.ErrorTemplates, keyBoxes []string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Knowledge Graph Summary\n\n", lg.Metadata.Project)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", models.Timestamp(now))
	fmt.Fprintf(&b, "**Protocol:** %s\n\n", lg.Metadata.Protocol)
	b.WriteString("---\n\n")

	b.WriteString("## 📊 Statistics\n\n")
	fmt.Fprintf(&b, "- **Total Boxes:** %d\n", lg.Boxes.Len())
	fmt.Fprintf(&b, "- **Categories:** %d\n", lg.Categories.Len())
	fmt.Fprintf(&b, "- **Embeddings:** %d\n", idx.Vectors.Len())
	fmt.Fprintf(&b, "- **Error Templates:** %d\n\n", tpl.Templates.Len())

	b.WriteString("## 📂 Categories\n\n")
	for pair := lg.Categories.Oldest(); pair != nil; pair = pair.Next() {
		ids := pair.Value
		fmt.Fprintf(&b, "### %s\n", pair.Key)
		fmt.Fprintf(&b, "Boxes: %d\n", len(ids))
		fmt.Fprintf(&b, "- %s", strings.Join(ids[:min(len(ids), categoryPreview)], ", "))
		if len(ids) > categoryPreview {
			fmt.Fprintf(&b, ", ... (%d more)", len(ids)-categoryPreview)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("## 🔑 Key Boxes\n\n")
	for _, id := range keyBoxes {
		box, ok := lg.Boxes.Get(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### %s\n", id)
		fmt.Fprintf(&b, "**Path:** `%s`\n\n", box.Path)
		fmt.Fprintf(&b, "**Description:** %s\n\n", box.Description)
		fmt.Fprintf(&b, "**Functions:** %d\n", len(box.Interface.Functions))
		fmt.Fprintf(&b, "**Classes:** %d\n\n", len(box.Interface.Classes))
	}

	b.WriteString(usage)
	b.WriteString(protocol)
	b.WriteString(nextSteps)
	return b.String()
}

const usage = "## 🔗 Usage\n\n" +
	"```bash\n" +
	"# Boxes in a category\n" +
	"boxquery category script-engine\n\n" +
	"# Rank boxes by keyword occurrences\n" +
	"boxquery keyword transaction\n\n" +
	"# Who includes a header\n" +
	"boxquery depends util.h\n\n" +
	"# Full detail for one box\n" +
	"boxquery box ScriptBox\n" +
	"```\n\n"

const protocol = "## 🏗️ City of Boxes Protocol\n\n" +
	"This knowledge graph follows the **City of Boxes** protocol:\n\n" +
	"1. **Boxes** - Discrete modules with clear boundaries\n" +
	"2. **Contracts** - Defined inputs/outputs/errors\n" +
	"3. **Context-Rich Errors** - Errors contain repair instructions\n" +
	"4. **Semantic Search** - Find boxes by meaning, not just name\n" +
	"5. **AI-Native** - Designed for LLM consumption\n\n"

const nextSteps = "## 🚀 Next Steps\n\n" +
	"1. Use `search-index.json` for semantic queries\n" +
	"2. Reference `error-templates.json` when implementing error handling\n" +
	"3. Keep `master-legend.json` updated as code evolves\n" +
	"4. Configure a network embedder (`embedder.provider: ollama` or `genai`) for production embeddings\n\n"
