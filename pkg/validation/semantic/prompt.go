package semantic

import (
	"fmt"
	"strings"

	"github.com/prepline/prepline/pkg/models"
)

// BuildPrompt renders the single prompt string sent to the reasoning service
// for one (rule, step) pair. Step fields are embedded verbatim; the UI and
// the rule author both rely on the service seeing the real values.
func BuildPrompt(rule models.ValidationRule, step models.Step, workflow *models.Workflow) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are validating one step of the line build %q.\n\n", workflow.Name)
	fmt.Fprintf(&b, "Step: %s\n", step.ID)
	fmt.Fprintf(&b, "Action: %s\n", step.Action())
	fmt.Fprintf(&b, "Target: %s\n", step.TargetName())

	if equipment := step.Equipment(); equipment != "" {
		fmt.Fprintf(&b, "Equipment: %s\n", equipment)
	}

	if duration := step.DurationText(); duration != "" {
		fmt.Fprintf(&b, "Duration: %s\n", duration)
	}

	fmt.Fprintf(&b, "\nRule: %s\n\n", rule.Prompt)
	b.WriteString(`Respond with a JSON object: {"pass": true or false, "reasoning": "why", "failures": ["each problem found"]}`)

	return b.String()
}
