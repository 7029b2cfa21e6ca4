package telemetry

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"zeno-access/internal/telemetry/domain"
)

// emitTimeout is the max time allowed for a single async emit. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after gRPC GracefulStop before shutting down OTel providers,
// so in-flight async telemetry emits have time to complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not blocked.
// emitter and event may be nil; EmitAsync then returns without starting a goroutine.
// The goroutine uses context.Background() so request cancellation does not abort the emit.
func EmitAsync(emitter EventEmitter, event *domain.Event) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			log.Printf("telemetry: async emit failed: %v", err)
		}
	}()
}

// decisionMetadata is the JSON shape stored in Event.Metadata for access_decision events.
type decisionMetadata struct {
	BusinessID   int64  `json:"business_id"`
	Action       string `json:"action"`
	BusinessRole string `json:"business_role,omitempty"`
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
}

// Decision describes one business action decision for DecisionEvent.
type Decision struct {
	OrgID        int64
	UserID       int64
	SessionID    string
	BusinessID   int64
	Action       string
	BusinessRole string
	Allowed      bool
	Reason       string
}

// DecisionEvent builds the access_decision event for d.
func DecisionEvent(d Decision, source string) *domain.Event {
	meta, _ := json.Marshal(decisionMetadata{
		BusinessID:   d.BusinessID,
		Action:       d.Action,
		BusinessRole: d.BusinessRole,
		Allowed:      d.Allowed,
		Reason:       d.Reason,
	})
	return &domain.Event{
		OrgID:     d.OrgID,
		UserID:    d.UserID,
		SessionID: d.SessionID,
		EventType: domain.EventTypeDecision,
		Source:    source,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
}
