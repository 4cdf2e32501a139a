package legend

import (
	"slices"
	"strings"

	"github.com/starford/boxgraph/internal/models"
)

// Static contract strings. They document intent and are attached to every
// box regardless of what the file contains.
var (
	contractErrors = []string{
		"SchemaValidationError",
		"FileNotFoundError",
		"CompilationError",
		"RuntimeError",
	}
	contractGuarantees = []string{
		"Thread-safe if documented",
		"Memory cleanup on destruction",
		"Error messages include context",
	}
)

// Contract builds the heuristic contract for a file. Accessor-looking
// functions (get*/set*) become inputs and every function becomes an output.
// A repeated function name keeps its first position and its last value.
func Contract(fm models.FileMetadata) models.Contract {
	inputs := models.NewFieldMap()
	outputs := models.NewFieldMap()
	for _, fn := range fm.Functions {
		if strings.HasPrefix(fn.Name, "get") || strings.HasPrefix(fn.Name, "set") {
			inputs.Set(fn.Name, models.ContractField{
				Type:        fn.ReturnType,
				Description: "Parameter for " + fn.Name,
			})
		}
		outputs.Set(fn.Name, models.ContractField{
			Type:        fn.ReturnType,
			Description: fn.Signature,
		})
	}
	return models.Contract{
		Inputs:     inputs,
		Outputs:    outputs,
		Errors:     slices.Clone(contractErrors),
		Guarantees: slices.Clone(contractGuarantees),
	}
}
