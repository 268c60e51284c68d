package startup

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

func newFlagStore(t *testing.T, name string, value flags.Value) *flags.Store {
	t.Helper()
	fs := flags.New()
	if err := fs.Set(flags.ScopeProject, name, value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return fs
}

type fakeSink struct {
	instructions string
}

func (f *fakeSink) AdditionalAgentInstructions() string    { return f.instructions }
func (f *fakeSink) SetAdditionalAgentInstructions(s string) { f.instructions = s }

func TestStartupListenerQueuesOnceWhenFlagSetAndBodyNonEmpty(t *testing.T) {
	sup := supervisor.ResetForTesting()
	loader := fakeLoader{
		"_startup.mustache": "---\ninstruction: \"^ welcome aboard\"\n---\nhello there",
	}
	task, err := Register(sup, buildEnv(loader))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	fs := newFlagStore(t, "startup-instruction", "general")
	task.OnSessionChanged("session-1", fs)

	if sup.IsQueueEmpty() {
		t.Fatalf("expected startup instruction queued")
	}
}

func TestStartupListenerOneShotPerSession(t *testing.T) {
	sup := supervisor.ResetForTesting()
	loader := fakeLoader{
		"_startup.mustache": "---\ninstruction: \"^ welcome aboard\"\n---\nhello there",
	}
	task, err := Register(sup, buildEnv(loader))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	fs := newFlagStore(t, "startup-instruction", "general")

	task.OnSessionChanged("session-1", fs)
	if sup.IsQueueEmpty() {
		t.Fatalf("expected first activation to queue")
	}
	// drain the queue, then re-activate the same session.
	sup.ProcessResponse(&fakeSink{})
	task.OnSessionChanged("session-1", fs)

	if !sup.IsQueueEmpty() {
		t.Fatalf("expected second activation of same session to be a no-op")
	}
}

func TestStartupListenerSkipsWhenFlagAbsent(t *testing.T) {
	sup := supervisor.ResetForTesting()
	loader := fakeLoader{
		"_startup.mustache": "---\ninstruction: \"^ welcome aboard\"\n---\nhello there",
	}
	task, err := Register(sup, buildEnv(loader))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	task.OnSessionChanged("session-1", flags.New())

	if !sup.IsQueueEmpty() {
		t.Fatalf("expected no instruction queued when flag is absent")
	}
}

func TestStartupListenerSkipsWhenRenderedBodyEmpty(t *testing.T) {
	sup := supervisor.ResetForTesting()
	loader := fakeLoader{
		"_startup.mustache": "---\ninstruction: \"^ welcome aboard\"\n---\n",
	}
	task, err := Register(sup, buildEnv(loader))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	fs := newFlagStore(t, "startup-instruction", "general")

	task.OnSessionChanged("session-1", fs)

	if !sup.IsQueueEmpty() {
		t.Fatalf("expected empty rendered body to skip queueing")
	}
}

func TestStartupListenerHandleEventRoute(t *testing.T) {
	sup := supervisor.ResetForTesting()
	loader := fakeLoader{
		"_startup.mustache": "---\ninstruction: \"^ welcome aboard\"\n---\nhello there",
	}
	task, err := Register(sup, buildEnv(loader))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	ok := task.HandleEvent(SessionEventKind, events.Data{Command: "session-1", Path: "general"})
	if !ok {
		t.Fatalf("HandleEvent returned false")
	}
	if sup.IsQueueEmpty() {
		t.Fatalf("expected HandleEvent path to queue the startup instruction")
	}
}
