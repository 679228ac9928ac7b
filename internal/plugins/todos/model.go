// Package todos implements the task subsystem of Taskbox: owner-scoped
// CRUD, completion toggling, filtered and sorted listing, and per-user
// aggregate statistics.
//
// Every operation is keyed by both task id and owning user id. A task that
// exists but belongs to someone else behaves exactly like a task that does
// not exist, so responses never reveal which ids are taken.
package todos

import "time"

// Priority levels a todo can carry. PriorityRank defines the sort order;
// it is unrelated to alphabetical order of the names.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// priorityRank maps priority to its sort rank: high before medium before low.
var priorityRank = map[string]int{
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// ValidPriority reports whether p is one of the three known priority values.
func ValidPriority(p string) bool {
	_, ok := priorityRank[p]
	return ok
}

// MaxTitleLength caps todo titles, matching the VARCHAR(200) column.
const MaxTitleLength = 200

// Filter restricts a listing by completion state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps a query value to a Filter. Unknown or empty values
// degrade to FilterAll rather than erroring.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterActive, FilterCompleted:
		return Filter(s)
	default:
		return FilterAll
	}
}

// SortBy selects the listing order.
type SortBy string

const (
	SortByCreatedAt SortBy = "createdAt"
	SortByDueDate   SortBy = "dueDate"
	SortByPriority  SortBy = "priority"
)

// ParseSortBy maps a query value to a SortBy. Unknown or empty values
// degrade to SortByCreatedAt.
func ParseSortBy(s string) SortBy {
	switch SortBy(s) {
	case SortByDueDate, SortByPriority:
		return SortBy(s)
	default:
		return SortByCreatedAt
	}
}

// Todo represents a single task owned by a user. UserID is set at creation
// and never changes.
type Todo struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Stats holds the per-user aggregate counts. Active is derived as
// Total - Completed rather than queried separately; HighPriority counts
// only pending high-priority work.
type Stats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Active       int `json:"active"`
	HighPriority int `json:"highPriority"`
}

// --- Request DTOs ---

// CreateTodoRequest holds the data submitted when creating a todo.
type CreateTodoRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// UpdateTodoRequest holds a partial update. Nil fields are left unchanged;
// present fields are re-validated against the same rules as creation.
type UpdateTodoRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}
