package syncapi

import (
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority is the client-side priority scale.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Recurrence is a repeat rule for a task.
type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

// DateLayout is the wire format of calendar dates such as dueDate.
const DateLayout = "2006-01-02"

// Task is the client-facing task representation (ClientTask).
type Task struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Status           Status      `json:"status"`
	Priority         Priority    `json:"priority"`
	DomainID         *string     `json:"domainId"`
	Tags             []string    `json:"tags"`
	DueDate          *string     `json:"dueDate"`
	EstimatedMinutes *int        `json:"estimatedMinutes"`
	Recurrence       *Recurrence `json:"recurrence,omitempty"`
	Order            int         `json:"order"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
	CompletedAt      *time.Time  `json:"completedAt"`
	// DeletedAt marks a tombstone. Tombstones replicate like any other change.
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Domain is the client-facing life-area representation (ClientDomain).
type Domain struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon"`
	Description string     `json:"description"`
	IsDefault   bool       `json:"isDefault"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// PullRequest asks for every change after LastSyncAt; nil means a full sync.
type PullRequest struct {
	LastSyncAt *time.Time `json:"lastSyncAt"`
}

// PullResponse carries the changed records in client representation.
type PullResponse struct {
	Tasks   []Task   `json:"tasks"`
	Domains []Domain `json:"domains"`
}

// PushRequest uploads local changes. LastSyncAt enables conflict detection;
// nil means the replica has never synced and every write is treated as new.
type PushRequest struct {
	Tasks      []Task     `json:"tasks"`
	Domains    []Domain   `json:"domains"`
	LastSyncAt *time.Time `json:"lastSyncAt"`
}

// PushResponse reports the submitted record count and the advisory number
// of detected conflicts.
type PushResponse struct {
	Pushed    int `json:"pushed"`
	Conflicts int `json:"conflicts"`
}

// QuotaResponse describes the caller's consumption of one metered action.
type QuotaResponse struct {
	Action           string     `json:"action"`
	Plan             string     `json:"plan"`
	Window           string     `json:"window"`
	Used             int64      `json:"used"`
	Limit            int64      `json:"limit"`
	Remaining        int64      `json:"remaining"`
	Allowed          bool       `json:"allowed"`
	Message          string     `json:"message"`
	ResetAt          *time.Time `json:"resetAt"`
	ResetDescription string     `json:"resetDescription"`
}

// ExportResponse points to a JSON snapshot of the caller's data.
type ExportResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Tasks     int       `json:"tasks"`
	Domains   int       `json:"domains"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details []common.FieldError `json:"details,omitempty"`
}
