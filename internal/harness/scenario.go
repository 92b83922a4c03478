package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/standlog/standlog/internal/report"
)

// Scenario defines a conformance test scenario: an owner, a sequence of
// host calls, and assertions over the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name, so keep it filesystem-safe.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Owner is the account that constructs the ledger. It becomes the
	// immutable owner and the only identity allowed to delete reports.
	Owner string `yaml:"owner"`

	// Steps are executed in order through the host dispatcher.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one host call. Op and As are always required; the remaining
// inputs depend on the op.
type Step struct {
	// Op names the operation (e.g. "add_report", "set_greeting").
	Op string `yaml:"op"`

	// As is the caller identity for this step.
	As string `yaml:"as"`

	// ID selects a report for get_report, update_report, delete_report.
	ID *int64 `yaml:"id,omitempty"`

	// Message is the new greeting for set_greeting.
	Message *string `yaml:"message,omitempty"`

	// Fields are the report fields for add_report and update_report.
	Fields *report.Fields `yaml:"fields,omitempty"`

	// Expect validates the step outcome. If nil the step must succeed
	// and its outputs are not inspected.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Error is the expected error code ("NOT_FOUND" or
	// "PERMISSION_DENIED"). Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// ID is the expected id assigned by add_report.
	ID *int64 `yaml:"id,omitempty"`

	// Greeting is the expected result of get_greeting.
	Greeting *string `yaml:"greeting,omitempty"`

	// Report holds expected field values for get_report. Subset match:
	// only the listed keys are checked. Valid keys are author,
	// done_today, goal_tomorrow, blocker, word_appreciation.
	Report map[string]string `yaml:"report,omitempty"`
}

// Assertion validates the final state after the last step.
type Assertion struct {
	// Type specifies the assertion:
	// - "greeting": the final greeting equals Value
	// - "report_count": exactly Count reports remain
	// - "report": the report at ID matches Expect, or is Absent
	Type string `yaml:"type"`

	// Value is the expected greeting (greeting).
	Value string `yaml:"value,omitempty"`

	// Count is the expected number of reports (report_count).
	Count int `yaml:"count,omitempty"`

	// ID selects the report to inspect (report).
	ID *int64 `yaml:"id,omitempty"`

	// Absent asserts the report does not exist (report).
	Absent bool `yaml:"absent,omitempty"`

	// Expect holds expected field values, subset match (report).
	Expect map[string]string `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertGreeting    = "greeting"
	AssertReportCount = "report_count"
	AssertReport      = "report"
)

// LoadScenario reads, schema-checks, and parses a scenario YAML file.
// Returns an error if the file doesn't exist, fails CUE schema
// validation, contains unknown fields (typos), or is missing inputs
// the named ops require.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario validates and parses raw scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Structural validation first: the CUE schema rejects unknown ops,
	// bad error codes, and misspelled keys with better messages than
	// the YAML decoder produces.
	if err := validateWithSchema(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks the per-op argument requirements that the
// schema cannot express.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep validates one step's inputs against its op.
func validateStep(index int, step *Step) error {
	if step.As == "" {
		return fmt.Errorf("steps[%d]: as is required", index)
	}

	switch report.Op(step.Op) {
	case report.OpGetGreeting, report.OpListReports:
		// No inputs.
	case report.OpSetGreeting:
		if step.Message == nil {
			return fmt.Errorf("steps[%d]: message is required for set_greeting", index)
		}
	case report.OpAddReport:
		if step.Fields == nil {
			return fmt.Errorf("steps[%d]: fields is required for add_report", index)
		}
	case report.OpGetReport, report.OpDeleteReport:
		if step.ID == nil {
			return fmt.Errorf("steps[%d]: id is required for %s", index, step.Op)
		}
	case report.OpUpdateReport:
		if step.ID == nil {
			return fmt.Errorf("steps[%d]: id is required for update_report", index)
		}
		if step.Fields == nil {
			return fmt.Errorf("steps[%d]: fields is required for update_report", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertGreeting:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for greeting", index)
		}
	case AssertReportCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for report_count", index)
		}
	case AssertReport:
		if a.ID == nil {
			return fmt.Errorf("assertions[%d]: id is required for report", index)
		}
		if !a.Absent && len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for report unless absent is set", index)
		}
		if a.Absent && len(a.Expect) > 0 {
			return fmt.Errorf("assertions[%d]: absent and expect are mutually exclusive", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
