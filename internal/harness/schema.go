package harness

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// validateWithSchema checks raw scenario YAML against the embedded CUE
// schema. A fresh CUE context per call keeps validation free of shared
// state; scenario files are small enough that compile cost is noise.
func validateWithSchema(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup #Scenario: %w", err)
	}

	file, err := cueyaml.Extract("scenario.yaml", data)
	if err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return fmt.Errorf("build scenario value: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
