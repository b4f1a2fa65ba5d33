package events

import (
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/stats"
)

// EventType represents different types of import events
type EventType string

const (
	EventImportCommitted EventType = "import.committed"
)

const (
	EventSource  = "refdata-service"
	EventVersion = "1.0"
)

// ImportEvent is the envelope of every event the service publishes
type ImportEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ImportCommittedEvent tells downstream consumers (sync, search indexes) that reference data changed
type ImportCommittedEvent struct {
	JobID     string    `json:"job_id"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id,omitempty"`
	DataTypes []string  `json:"data_types"`
	Stats     stats.Map `json:"stats"`
	Committed time.Time `json:"committed_at"`
}
