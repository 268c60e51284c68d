package nats

import "time"

// SubjectWorkflowPhase is the subject the workflow-monitor task (I)
// publishes a PhaseChangeMessage to whenever it detects a phase
// transition, and the one sibling instances subscribe to in order to
// render the same phase template locally.
const SubjectWorkflowPhase = "guide.workflow.phase"

// PhaseChangeMessage announces a workflow phase transition observed by
// one server instance's workflow-monitor task. CorrelationID carries the
// originating Relay's instance id; Relay.handle compares it with its own
// id to drop the broadcasts it published itself.
type PhaseChangeMessage struct {
	CorrelationID string    `json:"correlation_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	WorkflowPath  string    `json:"workflow_path"`
	Timestamp     time.Time `json:"timestamp"`
}
