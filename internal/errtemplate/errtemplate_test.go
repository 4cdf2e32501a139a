package errtemplate

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/boxgraph/internal/models"
)

func testLegend() *models.Legend {
	lg := models.NewLegend(models.LegendMetadata{}, models.Security{})
	inputs := models.NewFieldMap()
	inputs.Set("getFee", models.ContractField{Type: "int64", Description: "Parameter for getFee"})
	lg.Boxes.Set("WalletBox", &models.Box{
		ID:          "WalletBox",
		Path:        "src/wallet.cpp",
		Description: "Wallet logic",
		AIContext:   "File: src/wallet.cpp",
		Contract:    models.Contract{Inputs: inputs, Outputs: models.NewFieldMap(), Errors: []string{}, Guarantees: []string{}},
	})
	return lg
}

func TestGenerate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := Generate(testLegend(), now)

	if doc.Metadata.Protocol != Protocol || doc.Metadata.Version != "1.0" || doc.Metadata.Created != "2025-01-01T00:00:00.000Z" {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	tpl, ok := doc.Templates.Get("WalletBox")
	if !ok {
		t.Fatal("WalletBox template missing")
	}
	if tpl.BoxPath != "src/wallet.cpp" || tpl.Definition != "Wallet logic" || tpl.Purpose != "File: src/wallet.cpp" {
		t.Errorf("template = %+v", tpl)
	}
	rt := tpl.RuntimeTemplate
	if rt.Timestamp != "{{timestamp}}" || rt.InputReceived != "{{input}}" || rt.StackTrace != "{{stack}}" || rt.SystemState != "{{state}}" {
		t.Errorf("runtime template = %+v", rt)
	}
	if rt.ExpectedInput.Len() != 1 {
		t.Errorf("expected input = %d entries, want 1", rt.ExpectedInput.Len())
	}

	want := `You are repairing the WalletBox module. This module's purpose is: Wallet logic. It requires these inputs: {"getFee":{"type":"int64","description":"Parameter for getFee"}}. The error occurred because: {{error_reason}}. To fix this, you should: {{suggested_fix}}`
	if tpl.RepairPrompt != want {
		t.Errorf("repair prompt = %q\nwant %q", tpl.RepairPrompt, want)
	}
}

func TestInstantiateLeavesTemplateUntouched(t *testing.T) {
	tpl, _ := Generate(testLegend(), time.Now()).Templates.Get("WalletBox")

	got := Instantiate(tpl, RuntimeValues{
		Timestamp:    time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
		Input:        "fee=-1",
		ErrorReason:  "negative fee",
		SuggestedFix: "reject negative fees",
	})
	if got.RuntimeTemplate.InputReceived != "fee=-1" || got.RuntimeTemplate.Timestamp != "2025-02-03T04:05:06.000Z" {
		t.Errorf("runtime = %+v", got.RuntimeTemplate)
	}
	if !strings.HasSuffix(got.RepairPrompt, "because: negative fee. To fix this, you should: reject negative fees") {
		t.Errorf("prompt = %q", got.RepairPrompt)
	}
	if tpl.RuntimeTemplate.InputReceived != "{{input}}" || !strings.Contains(tpl.RepairPrompt, "{{error_reason}}") {
		t.Error("Instantiate modified the source template")
	}
}
