package workflow

import (
	"fmt"
	"log"

	"gopkg.in/yaml.v3"
)

// Parse decodes content as a workflow state document. A malformed document
// (invalid YAML or a shape that fails to decode) is logged as a warning
// and yields (nil, nil) rather than an error — callers retain the previous
// state and suppress change events, per §4.I's failure semantics.
func Parse(content []byte) (*State, error) {
	var s State
	if err := yaml.Unmarshal(content, &s); err != nil {
		log.Printf("[WORKFLOW] invalid workflow state YAML: %v", err)
		return nil, nil
	}
	return &s, nil
}

// ParseStrict is Parse's non-silent twin, used by tooling that wants the
// decode error surfaced rather than swallowed.
func ParseStrict(content []byte) (*State, error) {
	var s State
	if err := yaml.Unmarshal(content, &s); err != nil {
		return nil, fmt.Errorf("workflow: invalid state document: %w", err)
	}
	return &s, nil
}
