package query

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/boxgraph/internal/apperr"
)

const (
	maxKeywordResults = 10
	maxListed         = 10
	previewLen        = 80
	hashPrefixLen     = 16
)

// Printer renders query results as terminal text. Colors are only emitted
// when the writer is a terminal.
type Printer struct {
	w       io.Writer
	heading lipgloss.Style
	item    lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	banner  lipgloss.Style
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true),
		item:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("9")),
		muted:   r.NewStyle().Faint(true),
		banner: r.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 6).
			Align(lipgloss.Center),
	}
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// Loaded reports a successful artifact load.
func (p *Printer) Loaded(g *Graph) {
	p.printf("📚 Loading knowledge graph...\n\n")
	p.printf("✅ Loaded %d boxes\n\n", g.legend.Boxes.Len())
}

// Category prints the boxes of a category, or the available categories on a miss.
func (p *Printer) Category(g *Graph, name string) {
	p.printf("\n%s\n\n", p.heading.Render(fmt.Sprintf("🔍 Query: Find all boxes in category %q", name)))

	boxes, err := g.Category(name)
	if err != nil {
		p.printf("%s\n", p.fail.Render(fmt.Sprintf("❌ Category %q not found", name)))
		p.printf("\nAvailable categories:\n")
		for _, c := range g.CategoryCounts() {
			p.printf("  - %s (%d boxes)\n", c.Name, c.Count)
		}
		return
	}

	p.printf("Found %d boxes:\n\n", len(boxes))
	for _, box := range boxes {
		p.printf("%s\n", p.item.Render("📦 "+box.ID))
		p.printf("   Path: %s\n", box.Path)
		p.printf("   Desc: %s\n", preview(box.Description))
		p.printf("   Functions: %d | Classes: %d\n\n", len(box.Interface.Functions), len(box.Interface.Classes))
	}
}

// Keyword prints the top keyword matches and how many more were found.
func (p *Printer) Keyword(g *Graph, word string) {
	p.printf("\n%s\n\n", p.heading.Render(fmt.Sprintf("🔍 Query: Find boxes containing %q", word)))
	p.matches(g.Keyword(word))
}

// Semantic prints keyword matches for q, stating that no vector search is involved.
func (p *Printer) Semantic(g *Graph, q string) {
	p.printf("\n%s\n\n", p.heading.Render(fmt.Sprintf("🧠 Semantic Query: %q", q)))
	p.printf("%s\n", p.muted.Render("(Note: Using keyword fallback - stored embeddings are hash placeholders, not semantic vectors)"))
	p.Keyword(g, q)
}

func (p *Printer) matches(matches []Match, err error) {
	if errors.Is(err, apperr.ErrInvalidInput) {
		p.printf("%s\n", p.fail.Render("❌ Missing search term"))
		return
	}

	p.printf("Found %d matches:\n\n", len(matches))
	for _, m := range matches[:min(len(matches), maxKeywordResults)] {
		p.printf("%s\n", p.item.Render(fmt.Sprintf("📦 %s (%d occurrences)", m.ID, m.Relevance)))
		p.printf("   Path: %s\n", m.Box.Path)
		p.printf("   Category: %s\n", m.Box.Category)
		p.printf("   Desc: %s\n\n", preview(m.Box.Description))
	}
	if len(matches) > maxKeywordResults {
		p.printf("... and %d more matches\n\n", len(matches)-maxKeywordResults)
	}
}

// Depends prints the boxes that include name, or similar include names on a miss.
func (p *Printer) Depends(g *Graph, name string) {
	p.printf("\n%s\n\n", p.heading.Render(fmt.Sprintf("🔍 Query: What depends on %q?", name)))

	boxes, err := g.Dependents(name)
	if err != nil {
		p.printf("%s\n", p.fail.Render(fmt.Sprintf("❌ No boxes depend on %q", name)))
		p.printf("\nTip: Try searching for similar files:\n")
		for _, dep := range g.SimilarDependencies(name) {
			p.printf("  - %s\n", dep)
		}
		return
	}

	p.printf("%d boxes depend on %s:\n\n", len(boxes), name)
	for _, box := range boxes {
		p.printf("%s\n", p.item.Render("📦 "+box.ID))
		p.printf("   Path: %s\n", box.Path)
		p.printf("   Category: %s\n\n", box.Category)
	}
}

// Box prints every field of a box, or similar ids on a miss.
func (p *Printer) Box(g *Graph, id string) {
	p.printf("\n%s\n\n", p.heading.Render("📦 Box Details: "+id))

	box, err := g.Box(id)
	if err != nil {
		p.printf("%s\n", p.fail.Render(fmt.Sprintf("❌ Box %q not found", id)))
		p.printf("\nSimilar boxes:\n")
		for _, s := range g.SimilarBoxes(id) {
			p.printf("  - %s\n", s)
		}
		return
	}

	p.printf("ID:          %s\n", box.ID)
	p.printf("Path:        %s\n", box.Path)
	p.printf("Type:        %s\n", box.Type)
	p.printf("Category:    %s\n", box.Category)
	p.printf("\nDescription:\n  %s\n", box.Description)
	p.printf("\nAI Context:\n  %s\n", box.AIContext)

	fns := box.Interface.Functions
	p.printf("\nInterface:\n")
	p.printf("  Functions:   %d\n", len(fns))
	if len(fns) > 0 {
		p.printf("    - %s\n", strings.Join(fns[:min(len(fns), maxListed)], "\n    - "))
		if len(fns) > maxListed {
			p.printf("    ... and %d more\n", len(fns)-maxListed)
		}
	}
	p.printf("  Classes:     %d\n", len(box.Interface.Classes))
	if len(box.Interface.Classes) > 0 {
		p.printf("    - %s\n", strings.Join(box.Interface.Classes, "\n    - "))
	}
	p.printf("  OP_CODES:    %d\n", len(box.Interface.Opcodes))
	if len(box.Interface.Opcodes) > 0 {
		p.printf("    - %s\n", strings.Join(box.Interface.Opcodes, ", "))
	}

	deps := box.Dependencies
	p.printf("\nDependencies: %d\n", len(deps))
	if len(deps) > 0 {
		p.printf("  - %s\n", strings.Join(deps[:min(len(deps), maxListed)], "\n  - "))
		if len(deps) > maxListed {
			p.printf("  ... and %d more\n", len(deps)-maxListed)
		}
	}

	p.printf("\nMetadata:\n")
	p.printf("  Lines:       %d\n", box.Metadata.Lines)
	p.printf("  Size:        %s\n", FormatBytes(box.Metadata.Size))
	p.printf("  Hash:        %s...\n\n", prefix(box.Metadata.Hash, hashPrefixLen))
}

// Categories prints every category, largest first.
func (p *Printer) Categories(g *Graph) {
	counts := g.Categories()
	p.printf("\n%s\n\n", p.heading.Render(fmt.Sprintf("📂 Categories (%d total):", len(counts))))
	for _, c := range counts {
		p.printf("%-20s %d boxes\n", c.Name, c.Count)
	}
	p.printf("\n")
}

// Stats prints the collection counts, project metadata and security status.
func (p *Printer) Stats(g *Graph) {
	s := g.Stats()
	p.printf("\n%s\n\n", p.heading.Render(fmt.Sprintf("📊 %s Knowledge Graph Statistics", s.Metadata.Project)))
	p.printf("Total Boxes:       %d\n", s.Boxes)
	p.printf("Categories:        %d\n", s.Categories)
	p.printf("Dependencies:      %d\n", s.Dependencies)
	p.printf("Embeddings:        %d\n", s.Embeddings)
	p.printf("Error Templates:   %d\n", s.Templates)
	p.printf("\nProject:           %s\n", s.Metadata.Project)
	p.printf("Description:       %s\n", s.Metadata.Description)
	p.printf("Version:           %s\n", s.Metadata.Version)
	p.printf("Protocol:          %s\n", s.Metadata.Protocol)
	p.printf("Created:           %s\n", localTime(s.Metadata.Created))
	p.printf("\nSecurity Status:\n")
	p.printf("  Phase 1:         %s\n", choose(s.Security.Phase1Complete, "✅ Complete", "❌ Incomplete"))
	p.printf("  Phase 2:         %s\n", strings.Join(s.Security.Phase2Pending, ", "))
	p.printf("  Audit Required:  %s\n\n", choose(s.Security.AuditRequired, "⚠️  Yes", "✅ No"))
}

// Template prints the error template of a box, or similar ids on a miss.
func (p *Printer) Template(g *Graph, id string) {
	p.printf("\n%s\n\n", p.heading.Render("⚠️  Error Template: "+id))

	tpl, err := g.Template(id)
	if err != nil {
		p.printf("%s\n", p.fail.Render(fmt.Sprintf("❌ No template for %q", id)))
		p.printf("\nSimilar boxes:\n")
		for _, s := range g.SimilarBoxes(id) {
			p.printf("  - %s\n", s)
		}
		return
	}

	p.printf("Box:         %s\n", tpl.BoxID)
	p.printf("Path:        %s\n", tpl.BoxPath)
	p.printf("Definition:  %s\n", tpl.Definition)
	p.printf("Errors:      %s\n", strings.Join(tpl.Contract.Errors, ", "))
	p.printf("\nRepair Prompt:\n  %s\n\n", tpl.RepairPrompt)
}

// Unknown reports an unrecognized command.
func (p *Printer) Unknown(command, program string) {
	p.printf("%s\n", p.fail.Render("❌ Unknown command: "+command))
	p.printf("Run '%s help' for usage\n\n", program)
}

// Help prints the command reference.
func (p *Printer) Help(project, program string) {
	p.printf("\n%s\n\n", p.banner.Render(fmt.Sprintf("🔍 %s Knowledge Graph Query Tool 🔍\n\nCity of Boxes Protocol", project)))
	p.printf("Usage: %s <command> [arguments]\n\n", program)
	p.printf("Commands:\n\n")
	for _, c := range helpCommands {
		p.printf("  %-24s %s\n", c.usage, c.desc)
		if c.example != "" {
			p.printf("  %-24s Example: %s %s\n", "", program, c.example)
		}
		p.printf("\n")
	}
	p.printf("Examples:\n\n")
	for _, e := range helpExamples {
		p.printf("  # %s\n  %s %s\n\n", e.comment, program, e.args)
	}
}

var helpCommands = []struct {
	usage, desc, example string
}{
	{"category <name>", "List all boxes in a category", "category script-engine"},
	{"keyword <word>", "Search for keyword in box metadata", "keyword transaction"},
	{"depends <filename>", "Show what depends on a file", "depends script.h"},
	{"box <boxId>", "Show detailed info about a box", "box ScriptBox"},
	{"categories", "List all available categories", ""},
	{"stats", "Show overall statistics", ""},
	{"semantic <query>", "Semantic search (keyword fallback)", `semantic "transaction validation"`},
	{"template <boxId>", "Show the error template of a box", "template WalletBox"},
	{"serve", "Serve the queries over HTTP", ""},
	{"mcp", "Serve the queries as MCP tools over stdio", ""},
	{"help", "Show this help message", ""},
}

var helpExamples = []struct {
	comment, args string
}{
	{"Find all script-related modules", "category script-engine"},
	{"What handles RPC calls?", "keyword rpc"},
	{"What depends on the script engine?", "depends script.h"},
	{"Get details about the main consensus module", "box MainBox"},
	{"Show project statistics", "stats"},
}

// FormatBytes renders n as B, KB or MB with one decimal for the larger units.
func FormatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

// preview cuts s to previewLen characters, marking the cut with "...".
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	return prefix(s, previewLen) + "..."
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func localTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(time.DateTime)
}

func choose(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
