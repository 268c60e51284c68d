package workflow

import "gopkg.in/yaml.v3"

// State is the parsed shape of a `.guide.yaml` workflow-state file. Keys
// beyond the known fields are kept in Extra when decoding. State has no
// custom encoder, so encoding a State writes only the known fields and
// leaves Extra out.
type State struct {
	Phase       string   `yaml:"phase"`
	Issue       *string  `yaml:"issue,omitempty"`
	Plan        *string  `yaml:"plan,omitempty"`
	Tracking    *string  `yaml:"tracking,omitempty"`
	Description *string  `yaml:"description,omitempty"`
	Queue       []string `yaml:"queue"`

	Extra map[string]any `yaml:"-"`
}

// defaultPhase is used when a parsed document omits "phase" entirely.
const defaultPhase = PhaseDiscussion

// rawState captures the known keys; UnmarshalYAML decodes a second time
// into a plain map so Extra can retain anything State doesn't model
// explicitly.
type rawState struct {
	Phase       *string  `yaml:"phase"`
	Issue       *string  `yaml:"issue"`
	Plan        *string  `yaml:"plan"`
	Tracking    *string  `yaml:"tracking"`
	Description *string  `yaml:"description"`
	Queue       []string `yaml:"queue"`
}

// UnmarshalYAML implements custom decoding so unrecognized keys survive in
// Extra rather than being discarded.
func (s *State) UnmarshalYAML(value *yaml.Node) error {
	var known rawState
	if err := value.Decode(&known); err != nil {
		return err
	}
	var all map[string]any
	if err := value.Decode(&all); err != nil {
		return err
	}

	if known.Phase != nil {
		s.Phase = *known.Phase
	} else {
		s.Phase = defaultPhase
	}
	s.Issue = known.Issue
	s.Plan = known.Plan
	s.Tracking = known.Tracking
	s.Description = known.Description
	s.Queue = known.Queue
	if s.Queue == nil {
		s.Queue = []string{}
	}

	s.Extra = make(map[string]any)
	for _, k := range []string{"phase", "issue", "plan", "tracking", "description", "queue"} {
		delete(all, k)
	}
	for k, v := range all {
		s.Extra[k] = v
	}
	return nil
}
