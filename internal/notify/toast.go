// Package notify implements the desktop notifier (component P): a thin
// consumer of two core signals — a tracked instruction exhausting its
// retries unacknowledged, and a workflow phase transition — that makes
// each visible to whoever is sitting at the machine, grounded in
// internal/notifications/toast.go's Windows-only go-toast/toast wrapper.
package notify

import (
	"fmt"
	"runtime"

	"github.com/go-toast/toast"
)

// Toaster shows Windows toast notifications. Per §4.G's "drop the
// tracking entry silently" and §4.P, the core itself never surfaces this
// to the desktop; Toaster is the thing that does, entirely outside the
// core's own logging channel.
type Toaster struct {
	appID        string
	dashboardURL string
}

// New constructs a Toaster. An empty appID defaults to "guide-core"; an
// empty dashboardURL defaults to the local reference HTTP transport.
func New(appID, dashboardURL string) *Toaster {
	if appID == "" {
		appID = "guide-core"
	}
	if dashboardURL == "" {
		dashboardURL = "http://localhost:8080"
	}
	return &Toaster{appID: appID, dashboardURL: dashboardURL}
}

// IsSupported reports whether toast notifications can be shown on this
// platform. go-toast/toast only implements the Windows notification
// center protocol.
func (t *Toaster) IsSupported() bool {
	return runtime.GOOS == "windows"
}

func (t *Toaster) show(title, message string, audio toast.Audio) error {
	if runtime.GOOS != "windows" {
		return fmt.Errorf("notify: toast notifications are only supported on windows")
	}
	notification := toast.Notification{
		AppID:   t.appID,
		Title:   title,
		Message: message,
		Audio:   audio,
		Actions: []toast.Action{
			{Type: "protocol", Label: "Open", Arguments: t.dashboardURL},
		},
	}
	return notification.Push()
}

// NotifyInstructionExhausted fires when a tracked instruction's retries
// run out without an acknowledgement from the agent — wire this as the
// ledger's OnExhausted hook.
func (t *Toaster) NotifyInstructionExhausted(text string) {
	if err := t.show("Instruction never acknowledged", text, toast.IM); err != nil {
		logDropped("instruction-exhausted", err)
	}
}

// NotifyPhaseChange fires on a workflow phase transition — wire this as
// the workflow-monitor task's OnPhaseChange hook.
func (t *Toaster) NotifyPhaseChange(from, to string) {
	message := fmt.Sprintf("%s -> %s", from, to)
	if err := t.show("Workflow phase changed", message, toast.Default); err != nil {
		logDropped("phase-change", err)
	}
}
