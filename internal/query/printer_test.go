package query

import (
	"bytes"
	"strings"
	"testing"
)

func render(f func(p *Printer)) string {
	var buf bytes.Buffer
	f(NewPrinter(&buf))
	return buf.String()
}

func TestPrinterKeywordOverflow(t *testing.T) {
	g := testGraph()
	for i := 0; i < 12; i++ {
		id := "ExtraBox" + strings.Repeat("x", i)
		g.legend.Boxes.Set(id, box(id, "src/extra.cpp", "other", "zeta"))
	}

	out := render(func(p *Printer) { p.Keyword(g, "zeta") })

	for _, want := range []string{
		`🔍 Query: Find boxes containing "zeta"`,
		"Found 16 matches:",
		"📦 BetaBox (5 occurrences)\n   Path: src/beta.cpp\n   Category: wallet\n   Desc: zeta zeta zeta zeta zeta\n",
		"... and 6 more matches",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestPrinterSemanticStatesFallback(t *testing.T) {
	out := render(func(p *Printer) { p.Semantic(testGraph(), "zeta") })
	if !strings.Contains(out, "(Note: Using keyword fallback") {
		t.Errorf("fallback note missing:\n%s", out)
	}
	if !strings.Contains(out, "📦 BetaBox (5 occurrences)") {
		t.Errorf("keyword results missing:\n%s", out)
	}
}

func TestPrinterMisses(t *testing.T) {
	g := testGraph()
	tests := []struct {
		name string
		f    func(p *Printer)
		want []string
	}{
		{"category", func(p *Printer) { p.Category(g, "nope") }, []string{`❌ Category "nope" not found`, "  - wallet (3 boxes)"}},
		{"depends", func(p *Printer) { p.Depends(g, "util") }, []string{`❌ No boxes depend on "util"`, "  - util.h"}},
		{"box", func(p *Printer) { p.Box(g, "alpha") }, []string{`❌ Box "alpha" not found`, "  - AlphaBox"}},
		{"keyword", func(p *Printer) { p.Keyword(g, "") }, []string{"❌ Missing search term"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(tt.f)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q\n%s", w, out)
				}
			}
		})
	}
}

func TestPrinterBox(t *testing.T) {
	g := testGraph()
	b, _ := g.Box("AlphaBox")
	b.Dependencies = []string{"a.h", "b.h", "c.h", "d.h", "e.h", "f.h", "g.h", "h.h", "i.h", "j.h", "k.h", "l.h"}
	b.Interface.Opcodes = []string{"OP_CAT", "OP_MUL"}
	b.Metadata.Size = 2048
	b.Metadata.Hash = "0123456789abcdef0123456789abcdef"

	out := render(func(p *Printer) { p.Box(g, "AlphaBox") })

	for _, want := range []string{
		"ID:          AlphaBox\n",
		"  OP_CODES:    2\n    - OP_CAT, OP_MUL\n",
		"Dependencies: 12\n  - a.h\n  - b.h\n",
		"  - j.h\n  ... and 2 more\n",
		"  Size:        2.0 KB\n",
		"  Hash:        0123456789abcdef...\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "k.h") {
		t.Error("dependency list not capped at 10")
	}
}

func TestPrinterCategories(t *testing.T) {
	out := render(func(p *Printer) { p.Categories(testGraph()) })
	want := "wallet               3 boxes\nnetwork              1 boxes\nother                1 boxes\n"
	if !strings.Contains(out, want) {
		t.Errorf("output = %q, want it to contain %q", out, want)
	}
}

func TestPrinterStats(t *testing.T) {
	g := testGraph()
	g.legend.Security.AuditRequired = true
	out := render(func(p *Printer) { p.Stats(g) })
	for _, want := range []string{
		"Total Boxes:       5\n",
		"Embeddings:        1\n",
		"  Phase 1:         ❌ Incomplete\n",
		"  Audit Required:  ⚠️  Yes\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestPrinterHelpAndUnknown(t *testing.T) {
	out := render(func(p *Printer) {
		p.Help("AumCoin", "boxquery")
		p.Unknown("frobnicate", "boxquery")
	})
	for _, want := range []string{
		"AumCoin Knowledge Graph Query Tool",
		"Usage: boxquery <command> [arguments]",
		"Example: boxquery category script-engine",
		"❌ Unknown command: frobnicate\nRun 'boxquery help' for usage",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 / 2, "2.5 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	short := "Wallet logic"
	if got := preview(short); got != short {
		t.Errorf("preview(%q) = %q", short, got)
	}
	long := strings.Repeat("é", 100)
	if got := preview(long); got != strings.Repeat("é", 80)+"..." {
		t.Errorf("preview cut at wrong rune count: %q", got)
	}
}
