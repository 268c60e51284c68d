package nats

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
)

// Relay bridges workflow phase changes observed by one server instance to
// every sibling instance subscribed to the same NATS subject, and the
// reverse: phase changes observed by siblings trigger a local callback
// that renders the equivalent instruction and queues it non-priority.
type Relay struct {
	client        *Client
	instanceID    string
	onRemotePhase func(from, to string)

	subsMu sync.Mutex
	sub    *natsgo.Subscription
}

// NewRelay constructs a Relay bound to client. onRemotePhase is invoked
// for every phase-change message originating from a different instance;
// messages this instance published itself are filtered out by
// instance id, not by content, since two instances can legitimately
// observe the identical from/to pair.
func NewRelay(client *Client, onRemotePhase func(from, to string)) *Relay {
	return &Relay{
		client:        client,
		instanceID:    uuid.NewString(),
		onRemotePhase: onRemotePhase,
	}
}

// Start subscribes to SubjectWorkflowPhase. Call once per Relay.
func (r *Relay) Start() error {
	sub, err := r.client.Subscribe(SubjectWorkflowPhase, r.handle)
	if err != nil {
		return err
	}
	r.subsMu.Lock()
	r.sub = sub
	r.subsMu.Unlock()
	return nil
}

// Stop unsubscribes, if running.
func (r *Relay) Stop() {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	if r.sub != nil {
		r.sub.Unsubscribe()
		r.sub = nil
	}
}

// PublishPhaseChange is wired as the workflow-monitor task's
// OnPhaseChange hook: it broadcasts the transition to every sibling
// instance. workflowPath identifies which monitored file changed, since a
// single NATS subject may be shared by instances watching different
// projects.
func (r *Relay) PublishPhaseChange(workflowPath, from, to string) error {
	msg := PhaseChangeMessage{
		CorrelationID: r.instanceID,
		From:          from,
		To:            to,
		WorkflowPath:  workflowPath,
		Timestamp:     time.Now(),
	}
	return r.client.PublishJSON(SubjectWorkflowPhase, msg)
}

func (r *Relay) handle(msg *Message) {
	var pc PhaseChangeMessage
	if err := json.Unmarshal(msg.Data, &pc); err != nil {
		log.Printf("[RELAY] invalid phase-change message: %v", err)
		return
	}
	if pc.CorrelationID == r.instanceID {
		return
	}
	if r.onRemotePhase != nil {
		r.onRemotePhase(pc.From, pc.To)
	}
}
