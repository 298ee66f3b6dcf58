package validation

import (
	"fmt"
	"strings"

	"github.com/julianstephens/smallwins/internal/models"
)

// IssueType represents the type of validation issue
type IssueType string

const (
	IssueEmptyID          IssueType = "empty_id"
	IssueDuplicateID      IssueType = "duplicate_id"
	IssueEmptyName        IssueType = "empty_name"
	IssueMissingCreatedAt IssueType = "missing_created_time"
	IssueMissingLogTime   IssueType = "missing_log_time"
	IssueDuplicateName    IssueType = "duplicate_name"
)

// Issue is a single problem detected in a collection
type Issue struct {
	Type        IssueType
	Description string
	HabitIndex  int
	HabitID     string
	Field       string
}

// Result contains all detected issues. Errors block the collection from
// being accepted; warnings are informational.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// HasErrors returns true if the collection must be rejected
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// FormatReport returns a human-readable report of all issues
func (r *Result) FormatReport() string {
	if !r.HasErrors() && len(r.Warnings) == 0 {
		return "No issues detected."
	}

	var b strings.Builder
	if r.HasErrors() {
		b.WriteString("Errors:\n")
		for _, issue := range r.Errors {
			fmt.Fprintf(&b, "- %s\n", issue.Description)
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, issue := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", issue.Description)
		}
	}
	return b.String()
}

// Name trims a habit name and reports whether anything is left.
func Name(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("name must not be empty")
	}
	return trimmed, nil
}

// Collection checks the structural invariants of a habit collection: every
// habit has a unique non-empty id, a non-empty name, a creation time, and
// every log carries a time.
func Collection(c models.Collection) Result {
	var result Result
	seenIDs := make(map[string]int, len(c))
	seenNames := make(map[string]int, len(c))

	for i, h := range c {
		if h.ID == "" {
			result.Errors = append(result.Errors, Issue{
				Type:        IssueEmptyID,
				Description: fmt.Sprintf("habit #%d has an empty id", i),
				HabitIndex:  i,
				Field:       "id",
			})
		} else if first, ok := seenIDs[h.ID]; ok {
			result.Errors = append(result.Errors, Issue{
				Type:        IssueDuplicateID,
				Description: fmt.Sprintf("habit #%d reuses id %q from habit #%d", i, h.ID, first),
				HabitIndex:  i,
				HabitID:     h.ID,
				Field:       "id",
			})
		} else {
			seenIDs[h.ID] = i
		}

		if strings.TrimSpace(h.Name) == "" {
			result.Errors = append(result.Errors, Issue{
				Type:        IssueEmptyName,
				Description: fmt.Sprintf("habit #%d (%s) has an empty name", i, h.ID),
				HabitIndex:  i,
				HabitID:     h.ID,
				Field:       "name",
			})
		} else if first, ok := seenNames[h.Name]; ok {
			result.Warnings = append(result.Warnings, Issue{
				Type:        IssueDuplicateName,
				Description: fmt.Sprintf("habit #%d shares the name %q with habit #%d", i, h.Name, first),
				HabitIndex:  i,
				HabitID:     h.ID,
				Field:       "name",
			})
		} else {
			seenNames[h.Name] = i
		}

		if h.CreatedTime.IsZero() {
			result.Errors = append(result.Errors, Issue{
				Type:        IssueMissingCreatedAt,
				Description: fmt.Sprintf("habit #%d (%s) has no creation time", i, h.ID),
				HabitIndex:  i,
				HabitID:     h.ID,
				Field:       "createdTime",
			})
		}

		for j, l := range h.Logs {
			if l.Time.IsZero() {
				result.Errors = append(result.Errors, Issue{
					Type:        IssueMissingLogTime,
					Description: fmt.Sprintf("habit #%d (%s) log #%d has no time", i, h.ID, j),
					HabitIndex:  i,
					HabitID:     h.ID,
					Field:       fmt.Sprintf("logs[%d].time", j),
				})
			}
		}
	}

	return result
}
