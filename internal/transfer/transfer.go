// Package transfer encodes and decodes the habit collection in the JSON
// document format used for export and import.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/julianstephens/smallwins/internal/constants"
	"github.com/julianstephens/smallwins/internal/habits"
	"github.com/julianstephens/smallwins/internal/models"
)

// ShapeError reports a document that does not have the expected structure.
// Index is the position of the offending habit, or -1 for the document as
// a whole.
type ShapeError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("invalid document: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("invalid habit #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid habit #%d: %s: %s", e.Index, e.Field, e.Reason)
}

func (e *ShapeError) Is(target error) bool { return target == habits.ErrValidation }

type wireLog struct {
	Time string `json:"time"`
}

type wireHabit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedTime string    `json:"createdTime"`
	Archived    bool      `json:"archived"`
	Logs        []wireLog `json:"logs"`
}

// FormatTime renders t in the wire format: UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(constants.ISOTimeFormat)
}

// ParseTime parses an ISO-8601 timestamp with optional fractional seconds.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ExportFileName returns the export file name for the given instant, with
// colons replaced so the name is valid on every filesystem.
func ExportFileName(now time.Time) string {
	stamp := strings.ReplaceAll(FormatTime(now), ":", "-")
	return constants.ExportFilePrefix + stamp + constants.ExportFileSuffix
}

// Marshal encodes the collection as an indented JSON array.
func Marshal(c models.Collection) ([]byte, error) {
	out := make([]wireHabit, len(c))
	for i, h := range c {
		logs := make([]wireLog, len(h.Logs))
		for j, l := range h.Logs {
			logs[j] = wireLog{Time: FormatTime(l.Time)}
		}
		out[i] = wireHabit{
			ID:          h.ID,
			Name:        h.Name,
			CreatedTime: FormatTime(h.CreatedTime),
			Archived:    h.Archived,
			Logs:        logs,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal habits: %w", err)
	}
	return append(data, '\n'), nil
}

// Encode writes the collection to w.
func Encode(w io.Writer, c models.Collection) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write habits: %w", err)
	}
	return nil
}

// Decode reads a document from r. See Unmarshal.
func Decode(r io.Reader) (models.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read habits: %w", err)
	}
	return Unmarshal(data)
}

var requiredFields = []string{"id", "name", "createdTime", "archived", "logs"}

// Unmarshal parses a document and checks its shape: a top-level array of
// objects, each carrying every habit field with the right JSON type, and
// every log an object with a parseable time. Unknown fields are ignored.
// Semantic checks such as id uniqueness are left to the engine.
func Unmarshal(data []byte) (models.Collection, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ShapeError{Index: -1, Reason: "top-level value must be an array"}
		}
		return nil, &ShapeError{Index: -1, Reason: err.Error()}
	}
	if raw == nil && !bytes.Equal(bytes.TrimSpace(data), []byte("[]")) {
		return nil, &ShapeError{Index: -1, Reason: "top-level value must be an array"}
	}

	c := make(models.Collection, 0, len(raw))
	for i, elem := range raw {
		h, err := decodeHabit(i, elem)
		if err != nil {
			return nil, err
		}
		c = append(c, h)
	}
	return c, nil
}

func decodeHabit(i int, elem json.RawMessage) (models.Habit, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
		return models.Habit{}, &ShapeError{Index: i, Reason: "must be an object"}
	}
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return models.Habit{}, &ShapeError{Index: i, Field: name, Reason: "missing"}
		}
	}

	var h models.Habit
	if err := unmarshalField(fields["id"], &h.ID); err != nil {
		return models.Habit{}, &ShapeError{Index: i, Field: "id", Reason: "must be a string"}
	}
	if err := unmarshalField(fields["name"], &h.Name); err != nil {
		return models.Habit{}, &ShapeError{Index: i, Field: "name", Reason: "must be a string"}
	}
	if err := unmarshalField(fields["archived"], &h.Archived); err != nil {
		return models.Habit{}, &ShapeError{Index: i, Field: "archived", Reason: "must be a boolean"}
	}

	var created string
	if err := unmarshalField(fields["createdTime"], &created); err != nil {
		return models.Habit{}, &ShapeError{Index: i, Field: "createdTime", Reason: "must be a string"}
	}
	t, err := ParseTime(created)
	if err != nil {
		return models.Habit{}, &ShapeError{Index: i, Field: "createdTime", Reason: "not an ISO-8601 timestamp"}
	}
	h.CreatedTime = t

	var logs []json.RawMessage
	if err := unmarshalField(fields["logs"], &logs); err != nil || logs == nil {
		return models.Habit{}, &ShapeError{Index: i, Field: "logs", Reason: "must be an array"}
	}
	h.Logs = make([]models.HabitLog, 0, len(logs))
	for j, l := range logs {
		field := fmt.Sprintf("logs[%d]", j)
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(l, &entry); err != nil || entry == nil {
			return models.Habit{}, &ShapeError{Index: i, Field: field, Reason: "must be an object"}
		}
		var s string
		if err := unmarshalField(entry["time"], &s); err != nil {
			return models.Habit{}, &ShapeError{Index: i, Field: field + ".time", Reason: "must be a string"}
		}
		lt, err := ParseTime(s)
		if err != nil {
			return models.Habit{}, &ShapeError{Index: i, Field: field + ".time", Reason: "not an ISO-8601 timestamp"}
		}
		h.Logs = append(h.Logs, models.HabitLog{Time: lt})
	}
	return h, nil
}

// unmarshalField rejects null, which encoding/json would otherwise accept
// for any destination.
func unmarshalField(raw json.RawMessage, v any) error {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errors.New("null value")
	}
	return json.Unmarshal(raw, v)
}
