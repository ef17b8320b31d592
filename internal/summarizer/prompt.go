package summarizer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"marketcli/pkg/contracts/domain"
)

// PromptVersion identifies the template baked into the binary. Bump it when
// prompt.txt changes so exported runs stay attributable.
const PromptVersion = "v1"

//go:embed prompt.txt
var promptTemplate string

var prompt = template.Must(template.New("summary").Parse(promptTemplate))

// promptData is the payload rendered into the template
type promptData struct {
	AgentResults string
	TotalRecords int
}

// renderPrompt formats the aggregated agent results into the fixed prompt
// template
func renderPrompt(payload *domain.AggregatedPayload) (string, error) {
	var results strings.Builder
	for _, agent := range payload.Agents {
		body, err := json.MarshalIndent(agent.Results, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal %s results: %w", agent.AgentName, err)
		}
		fmt.Fprintf(&results, "\n[%s]\n", strings.ToUpper(agent.AgentName))
		fmt.Fprintf(&results, "Confidence: %.4f\n", agent.Confidence)
		fmt.Fprintf(&results, "Results: %s\n", body)
	}

	var b strings.Builder
	err := prompt.Execute(&b, promptData{
		AgentResults: results.String(),
		TotalRecords: payload.TotalRecords,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
