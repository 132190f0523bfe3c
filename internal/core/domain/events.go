package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventDashboardUpdated EventType = "DASHBOARD_UPDATED"
	EventRecordsChanged   EventType = "RECORDS_CHANGED"
	EventAnnouncement     EventType = "ANNOUNCEMENT"
	EventPong             EventType = "PONG"
)

// Topics clients can subscribe to.
const (
	TopicDashboard     = "dashboard"
	TopicReportsPrefix = "reports:"
)

// ReportTopic returns the topic for live updates of one collection.
func ReportTopic(kind RecordKind) string {
	return TopicReportsPrefix + string(kind)
}

// Event is the payload sent over WebSocket.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
	Topic   string      `json:"topic"` // Used for routing to subscribed "rooms"
}

// Announcement is a short human-readable message for assistive UIs,
// e.g. "Sorted by Data, descending".
type Announcement struct {
	Message    string `json:"message"`
	Politeness string `json:"politeness"`
}
