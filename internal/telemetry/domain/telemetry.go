package domain

import "time"

// Event types emitted by the access service.
const (
	// EventTypeDecision is emitted for every business action decision served over gRPC.
	EventTypeDecision = "access_decision"
	// EventTypeGRPCRequest is emitted by the telemetry interceptor after each RPC.
	EventTypeGRPCRequest = "grpc_request"
)

// Event is a telemetry event scoped to an organization, with optional user and session.
// Zero IDs mean "not set".
type Event struct {
	OrgID     int64
	UserID    int64
	SessionID string
	EventType string
	Source    string
	Metadata  []byte // JSON
	CreatedAt time.Time
}
