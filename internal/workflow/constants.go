// Package workflow parses and diffs the `.guide.yaml` workflow-state file
// consumed by the workflow-monitor task (component I).
package workflow

import "fmt"

const (
	PhaseDiscussion     = "discussion"
	PhasePlanning       = "planning"
	PhaseImplementation = "implementation"
	PhaseCheck          = "check"
	PhaseReview         = "review"
)

// DefaultWorkflowFile is the default filename watched for workflow state.
const DefaultWorkflowFile = ".guide.yaml"

// DefaultPhases is the canonical ordered phase sequence.
var DefaultPhases = []string{
	PhaseDiscussion,
	PhasePlanning,
	PhaseImplementation,
	PhaseCheck,
	PhaseReview,
}

// RequireEntryConsent returns the transition-control marker for a phase
// that requires consent before being entered.
func RequireEntryConsent(phase string) string {
	return fmt.Sprintf("*%s", phase)
}

// RequireExitConsent returns the transition-control marker for a phase
// that requires consent before being left.
func RequireExitConsent(phase string) string {
	return fmt.Sprintf("%s*", phase)
}

// RequireBothConsent returns the transition-control marker for a phase
// requiring consent on both entry and exit.
func RequireBothConsent(phase string) string {
	return fmt.Sprintf("*%s*", phase)
}
