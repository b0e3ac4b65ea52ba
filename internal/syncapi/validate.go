package syncapi

import (
	"fmt"
	"math"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/google/uuid"
)

const (
	MaxTitleLength             = 200
	MaxTaskDescriptionLength   = 2000
	MaxDomainNameLength        = 50
	MaxDomainIconLength        = 50
	MaxDomainDescriptionLength = 500
	// MaxBatchSize bounds each collection of a single push.
	MaxBatchSize = 5000
	// MaxEstimatedMinutes is about two years of work; stored as seconds.
	MaxEstimatedMinutes = 1_000_000
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Valid reports whether p is a known client priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Valid reports whether r is a known recurrence rule.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// fieldErrors accumulates problems under a common path prefix.
type fieldErrors struct {
	prefix string
	list   []common.FieldError
}

func (f *fieldErrors) add(field, format string, args ...any) {
	f.list = append(f.list, common.FieldError{Field: f.prefix + field, Message: fmt.Sprintf(format, args...)})
}

func (f *fieldErrors) uuid(field, value string) {
	if value == "" {
		f.add(field, "is required")
		return
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		f.add(field, "must be a uuid")
		return
	}
	// ids are compared as strings everywhere, so only one spelling is accepted
	if parsed.String() != value {
		f.add(field, "must be a lowercase hyphenated uuid")
	}
}

// order is stored as a 32-bit column.
func (f *fieldErrors) order(value int) {
	if value < math.MinInt32 || value > math.MaxInt32 {
		f.add("order", "must be between %d and %d", math.MinInt32, math.MaxInt32)
	}
}

func (f *fieldErrors) maxLen(field, value string, limit int) {
	if n := utf8.RuneCountInString(value); n > limit {
		f.add(field, "must be at most %d characters (got %d)", limit, n)
	}
}

func (f *fieldErrors) timestamps(createdAt, updatedAt time.Time) {
	if createdAt.IsZero() {
		f.add("createdAt", "is required")
	}
	if updatedAt.IsZero() {
		f.add("updatedAt", "is required")
	}
	if !createdAt.IsZero() && !updatedAt.IsZero() && updatedAt.Before(createdAt) {
		f.add("updatedAt", "must not be before createdAt")
	}
	// stored stamps keep microseconds; a finer stamp would come back earlier
	// than it was sent and slip behind pull cursors
	if createdAt.Nanosecond()%1000 != 0 {
		f.add("createdAt", "must have at most microsecond precision")
	}
	if updatedAt.Nanosecond()%1000 != 0 {
		f.add("updatedAt", "must have at most microsecond precision")
	}
}

func (t *Task) validate(f *fieldErrors) {
	f.uuid("id", t.ID)

	if t.Title == "" {
		f.add("title", "is required")
	}
	f.maxLen("title", t.Title, MaxTitleLength)
	f.maxLen("description", t.Description, MaxTaskDescriptionLength)

	if !t.Status.Valid() {
		f.add("status", "must be one of todo, in_progress, done")
	}
	if !t.Priority.Valid() {
		f.add("priority", "must be one of low, medium, high, urgent")
	}
	if t.DomainID != nil {
		f.uuid("domainId", *t.DomainID)
	}
	if t.DueDate != nil {
		if _, err := time.Parse(DateLayout, *t.DueDate); err != nil {
			f.add("dueDate", "must be a YYYY-MM-DD date")
		}
	}
	if t.EstimatedMinutes != nil {
		if m := *t.EstimatedMinutes; m < 0 {
			f.add("estimatedMinutes", "must not be negative")
		} else if m > MaxEstimatedMinutes {
			f.add("estimatedMinutes", "must be at most %d", MaxEstimatedMinutes)
		}
	}
	f.order(t.Order)
	if t.Recurrence != nil && !t.Recurrence.Valid() {
		f.add("recurrence", "must be one of daily, weekly, monthly, yearly")
	}

	f.timestamps(t.CreatedAt, t.UpdatedAt)
}

func (d *Domain) validate(f *fieldErrors) {
	f.uuid("id", d.ID)

	if d.Name == "" {
		f.add("name", "is required")
	}
	f.maxLen("name", d.Name, MaxDomainNameLength)

	if !colorPattern.MatchString(d.Color) {
		f.add("color", "must be a #RRGGBB color")
	}
	f.maxLen("icon", d.Icon, MaxDomainIconLength)
	f.maxLen("description", d.Description, MaxDomainDescriptionLength)
	f.order(d.Order)

	f.timestamps(d.CreatedAt, d.UpdatedAt)
}

// Validate checks a single task.
func (t *Task) Validate() error {
	f := &fieldErrors{}
	t.validate(f)
	return f.err()
}

// Validate checks a single domain.
func (d *Domain) Validate() error {
	f := &fieldErrors{}
	d.validate(f)
	return f.err()
}

// Validate checks the whole batch and rejects it on the first record that
// violates the schema, reporting every problem found.
func (r *PushRequest) Validate() error {
	f := &fieldErrors{}

	if len(r.Tasks) > MaxBatchSize {
		f.add("tasks", "must contain at most %d records (got %d)", MaxBatchSize, len(r.Tasks))
	}
	if len(r.Domains) > MaxBatchSize {
		f.add("domains", "must contain at most %d records (got %d)", MaxBatchSize, len(r.Domains))
	}

	seen := make(map[string]int, len(r.Domains))
	for i := range r.Domains {
		f.prefix = fmt.Sprintf("domains[%d].", i)
		r.Domains[i].validate(f)
		if j, dup := seen[r.Domains[i].ID]; dup && r.Domains[i].ID != "" {
			f.add("id", "duplicates domains[%d]", j)
		}
		seen[r.Domains[i].ID] = i
	}

	seen = make(map[string]int, len(r.Tasks))
	for i := range r.Tasks {
		f.prefix = fmt.Sprintf("tasks[%d].", i)
		r.Tasks[i].validate(f)
		if j, dup := seen[r.Tasks[i].ID]; dup && r.Tasks[i].ID != "" {
			f.add("id", "duplicates tasks[%d]", j)
		}
		seen[r.Tasks[i].ID] = i
	}

	return f.err()
}

// Validate checks the pull cursor.
func (r *PullRequest) Validate() error {
	if r.LastSyncAt != nil && r.LastSyncAt.IsZero() {
		return common.NewValidationError(common.FieldError{Field: "lastSyncAt", Message: "must be an ISO-8601 instant or null"})
	}
	return nil
}

func (f *fieldErrors) err() error {
	if len(f.list) == 0 {
		return nil
	}
	return common.NewValidationError(f.list...)
}
