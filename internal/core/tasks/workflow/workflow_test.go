package workflow

import (
	"testing"

	"github.com/deeprave/mcp-guide-go/internal/core/events"
	"github.com/deeprave/mcp-guide-go/internal/core/flags"
	"github.com/deeprave/mcp-guide-go/internal/core/supervisor"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/common"
)

type fakeLoader map[string]string

func (f fakeLoader) Read(p string) (string, error) {
	c, ok := f[p]
	if !ok {
		return "---\ninstruction: \"\"\n---\n", nil
	}
	return c, nil
}

func buildEnv(loader fakeLoader) common.RenderEnv {
	return common.RenderEnv{
		Loader:        loader,
		DocRoot:       ".",
		SessionVars:   func() map[string]any { return nil },
		ResolvedFlags: func() map[string]flags.Value { return nil },
	}
}

func TestWorkflowTaskQueuesSetupOnInit(t *testing.T) {
	sup := supervisor.ResetForTesting()
	loader := fakeLoader{
		"monitoring-setup.mustache": "---\ninstruction: \"^ begin tracking\"\n---\n",
	}
	env := buildEnv(loader)

	task, err := Register(sup, env, ".guide.yaml")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if task.setupTrackedID == "" {
		t.Fatalf("expected setup to be tracked")
	}
	if sup.IsQueueEmpty() {
		t.Fatalf("expected setup instruction queued")
	}
}

func TestWorkflowTaskDetectsPhaseChangeAndQueuesPriority(t *testing.T) {
	sup := supervisor.ResetForTesting()
	loader := fakeLoader{
		"monitoring-setup.mustache": "---\ninstruction: \"\"\n---\n",
		"*planning.mustache":        "---\ninstruction: \"^ enter planning\"\n---\n",
	}
	env := buildEnv(loader)
	task, err := Register(sup, env, ".guide.yaml")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	task.HandleEvent(events.FSFileContent, events.Data{
		Path:    ".guide.yaml",
		Content: "phase: discussion\n",
	})
	task.HandleEvent(events.FSFileContent, events.Data{
		Path:    ".guide.yaml",
		Content: "phase: planning\n",
	})

	if sup.IsQueueEmpty() {
		t.Fatalf("expected phase-change instruction queued")
	}
}
