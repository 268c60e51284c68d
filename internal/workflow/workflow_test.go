package workflow

import "testing"

func strp(s string) *string { return &s }

func TestParseDefaultsPhase(t *testing.T) {
	s, err := Parse([]byte("queue: []\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Phase != PhaseDiscussion {
		t.Fatalf("expected default phase discussion, got %q", s.Phase)
	}
}

func TestParseInvalidYAMLReturnsNilNotError(t *testing.T) {
	s, err := Parse([]byte("not: valid: yaml: at: all: ["))
	if err != nil {
		t.Fatalf("expected nil error for malformed YAML (warn + nil), got %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil state for malformed YAML")
	}
}

func TestParsePreservesExtraKeys(t *testing.T) {
	s, err := Parse([]byte("phase: planning\ncustom_field: hello\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Extra["custom_field"] != "hello" {
		t.Fatalf("expected custom_field preserved, got %v", s.Extra)
	}
}

func TestDetectNoChangesOnStartup(t *testing.T) {
	next := &State{Phase: PhasePlanning}
	if changes := Detect(nil, next); changes != nil {
		t.Fatalf("expected nil changes on startup, got %v", changes)
	}
}

func TestDetectPhaseChange(t *testing.T) {
	old := &State{Phase: PhaseDiscussion}
	next := &State{Phase: PhasePlanning}
	changes := Detect(old, next)
	if len(changes) != 1 || changes[0].Type != ChangePhase {
		t.Fatalf("expected single phase change, got %v", changes)
	}
	if changes[0].From != PhaseDiscussion || changes[0].To != PhasePlanning {
		t.Fatalf("got %+v", changes[0])
	}
	if tmpl := InstructionTemplateFor(changes[0]); tmpl != "*planning" {
		t.Fatalf("expected *planning template, got %q", tmpl)
	}
}

func TestDetectQueueAddedRemoved(t *testing.T) {
	old := &State{Phase: PhaseDiscussion, Queue: []string{"a", "b"}}
	next := &State{Phase: PhaseDiscussion, Queue: []string{"b", "c"}}
	changes := Detect(old, next)
	if len(changes) != 1 || changes[0].Type != ChangeQueue {
		t.Fatalf("expected single queue change, got %v", changes)
	}
	if len(changes[0].Added) != 1 || changes[0].Added[0] != "c" {
		t.Fatalf("expected added=[c], got %v", changes[0].Added)
	}
	if len(changes[0].Removed) != 1 || changes[0].Removed[0] != "a" {
		t.Fatalf("expected removed=[a], got %v", changes[0].Removed)
	}
	if tmpl := InstructionTemplateFor(changes[0]); tmpl != "monitoring-result" {
		t.Fatalf("expected monitoring-result template, got %q", tmpl)
	}
}

func TestDetectTrackingChange(t *testing.T) {
	old := &State{Phase: PhaseDiscussion, Tracking: strp("PROJ-1")}
	next := &State{Phase: PhaseDiscussion, Tracking: strp("PROJ-2")}
	changes := Detect(old, next)
	if len(changes) != 1 || changes[0].Type != ChangeTracking {
		t.Fatalf("expected tracking change, got %v", changes)
	}
}

func TestDetectNoSpuriousChanges(t *testing.T) {
	old := &State{Phase: PhaseDiscussion, Queue: []string{"a"}}
	next := &State{Phase: PhaseDiscussion, Queue: []string{"a"}}
	if changes := Detect(old, next); changes != nil {
		t.Fatalf("expected no changes for identical states, got %v", changes)
	}
}
