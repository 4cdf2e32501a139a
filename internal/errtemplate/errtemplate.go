// Package errtemplate generates context-rich error templates for boxes.
package errtemplate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/starford/boxgraph/internal/models"
)

// Template document constants.
const (
	Protocol = "City of Boxes Context-Rich Errors"
	Version  = "1.0"
)

// Placeholders left in templates for the caller to fill at error time.
const (
	PlaceholderTimestamp    = "{{timestamp}}"
	PlaceholderInput        = "{{input}}"
	PlaceholderStack        = "{{stack}}"
	PlaceholderState        = "{{state}}"
	PlaceholderErrorReason  = "{{error_reason}}"
	PlaceholderSuggestedFix = "{{suggested_fix}}"
)

// Generate creates one template per box, in registry order. Runtime fields
// stay as placeholders.
func Generate(lg *models.Legend, now time.Time) *models.ErrorTemplates {
	doc := models.NewErrorTemplates(models.TemplatesMetadata{
		Protocol: Protocol,
		Version:  Version,
		Created:  models.Timestamp(now),
	})
	for pair := lg.Boxes.Oldest(); pair != nil; pair = pair.Next() {
		doc.Templates.Set(pair.Key, ForBox(pair.Key, pair.Value))
	}
	return doc
}

// ForBox builds the template for a single box.
func ForBox(id string, box *models.Box) *models.ErrorTemplate {
	return &models.ErrorTemplate{
		BoxID:      id,
		BoxPath:    box.Path,
		Definition: box.Description,
		Purpose:    box.AIContext,
		Contract:   box.Contract,
		RuntimeTemplate: models.RuntimeTemplate{
			Timestamp:     PlaceholderTimestamp,
			InputReceived: PlaceholderInput,
			ExpectedInput: box.Contract.Inputs,
			StackTrace:    PlaceholderStack,
			SystemState:   PlaceholderState,
		},
		RepairPrompt: RepairPrompt(id, box),
	}
}

// RepairPrompt renders the natural-language repair instructions for a box.
func RepairPrompt(id string, box *models.Box) string {
	inputs := []byte("{}")
	if box.Contract.Inputs != nil {
		if data, err := json.Marshal(box.Contract.Inputs); err == nil {
			inputs = data
		}
	}
	return fmt.Sprintf("You are repairing the %s module. This module's purpose is: %s. It requires these inputs: %s. The error occurred because: %s. To fix this, you should: %s",
		id, box.Description, inputs, PlaceholderErrorReason, PlaceholderSuggestedFix)
}

// RuntimeValues are the facts a caller knows when an error happens.
type RuntimeValues struct {
	Timestamp    time.Time
	Input        string
	Stack        string
	State        string
	ErrorReason  string
	SuggestedFix string
}

// Instantiate returns a copy of tpl with every placeholder replaced. The
// template itself is not modified.
func Instantiate(tpl *models.ErrorTemplate, v RuntimeValues) *models.ErrorTemplate {
	out := *tpl
	out.RuntimeTemplate.Timestamp = models.Timestamp(v.Timestamp)
	out.RuntimeTemplate.InputReceived = v.Input
	out.RuntimeTemplate.StackTrace = v.Stack
	out.RuntimeTemplate.SystemState = v.State
	out.RepairPrompt = strings.NewReplacer(
		PlaceholderErrorReason, v.ErrorReason,
		PlaceholderSuggestedFix, v.SuggestedFix,
	).Replace(tpl.RepairPrompt)
	return &out
}
