// Package journal loads, mutates, and persists the task journal file.
package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Priority represents a task priority level. The zero value means unset.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = ""
)

// Rank returns the sort rank for the priority. High priority sorts first,
// unset sorts last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// ParsePriority parses a priority string, case-insensitively. The empty
// string parses to PriorityNone.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityHigh, PriorityMedium, PriorityLow, PriorityNone:
		return p, nil
	default:
		return PriorityNone, &InvalidInputError{Reason: fmt.Sprintf("invalid priority %q, must be one of: low, medium, high", s)}
	}
}

// MarshalJSON encodes an unset priority as null, matching the journal file
// format.
func (p Priority) MarshalJSON() ([]byte, error) {
	if p == PriorityNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

// UnmarshalJSON accepts either a string or null.
func (p *Priority) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = PriorityNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = Priority(strings.ToLower(s))
	return nil
}

// UnixTime is a time.Time that serializes as integer Unix epoch seconds.
type UnixTime time.Time

// Time returns the underlying time.Time.
func (t UnixTime) Time() time.Time {
	return time.Time(t)
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(time.Time(t).Unix(), 10)), nil
}

func (t *UnixTime) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		*t = UnixTime(time.Time{})
		return nil
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse epoch seconds: %w", err)
	}
	*t = UnixTime(time.Unix(sec, 0).UTC())
	return nil
}

// Task represents a single entry in the journal file.
type Task struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	CreatedAt UnixTime  `json:"created_at"`
	DueDate   *UnixTime `json:"due_date"`
	Priority  Priority  `json:"priority"`
	Category  *string   `json:"category"`
}

// dueDateRe is the accepted shape for due-date input. Anything else is
// rejected before the calendar parse.
var dueDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NewTask constructs a task with created_at set to now. The due date, when
// non-empty, must be a valid YYYY-MM-DD calendar date.
func NewTask(text, dueDate string) (Task, error) {
	if strings.TrimSpace(text) == "" {
		return Task{}, &InvalidInputError{Reason: "task text is empty"}
	}

	task := Task{
		Text:      text,
		CreatedAt: UnixTime(time.Now().UTC().Truncate(time.Second)),
	}

	if dueDate != "" {
		if !dueDateRe.MatchString(dueDate) {
			return Task{}, &InvalidInputError{Reason: fmt.Sprintf("invalid date %q, use YYYY-MM-DD format", dueDate)}
		}
		d, err := time.Parse("2006-01-02", dueDate)
		if err != nil {
			return Task{}, &InvalidInputError{Reason: fmt.Sprintf("invalid date %q: %v", dueDate, err)}
		}
		due := UnixTime(d.UTC())
		task.DueDate = &due
	}

	return task, nil
}

// SortOrder selects the direction for priority-rank sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder parses a sort order string, case-insensitively. The empty
// string parses to SortAsc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortAsc, nil
	case SortAsc, SortDesc:
		return o, nil
	default:
		return SortAsc, &InvalidInputError{Reason: fmt.Sprintf("invalid sort order %q, must be asc or desc", s)}
	}
}

// sortTasks stable-sorts tasks by priority rank in the given direction.
// Stability preserves the previously persisted order among equal ranks.
func sortTasks(tasks []Task, order SortOrder) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if order == SortDesc {
			return tasks[j].Priority.Rank() < tasks[i].Priority.Rank()
		}
		return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
	})
}

// Store owns the on-disk journal file. Every mutation is a full
// read-modify-write of the backing file; the store never updates in place.
type Store struct {
	Path string
}

// NewStore creates a store for the journal file at path. The file does not
// need to exist yet.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the journal file. A missing or empty file yields an empty
// collection, not an error.
func (s *Store) Load() ([]Task, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read journal file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &ParseError{Path: s.Path, Err: err}
	}
	return tasks, nil
}

// save rewrites the whole journal file with 2-space indentation.
func (s *Store) save(tasks []Task) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal file: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("write journal file: %w", err)
	}
	return nil
}

// Add validates and appends a new task, assigns it the next id, re-sorts
// ascending by priority rank, and persists the collection. Validation runs
// before any file access so a rejected add leaves the file untouched.
func (s *Store) Add(text, dueDate string, priority Priority, category string) (Task, error) {
	task, err := NewTask(text, dueDate)
	if err != nil {
		return Task{}, err
	}
	task.Priority = priority
	if c := strings.TrimSpace(category); c != "" {
		task.Category = &c
	}

	tasks, err := s.Load()
	if err != nil {
		return Task{}, err
	}

	task.ID = len(tasks) + 1
	tasks = append(tasks, task)
	sortTasks(tasks, SortAsc)

	if err := s.save(tasks); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Complete removes the task at the given 1-based position in the persisted
// order, re-sorts, and persists. It returns the removed task.
func (s *Store) Complete(position int) (Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return Task{}, err
	}
	if position < 1 || position > len(tasks) {
		return Task{}, &InvalidInputError{Reason: fmt.Sprintf("position %d out of range, journal has %d tasks", position, len(tasks))}
	}

	removed := tasks[position-1]
	tasks = append(tasks[:position-1], tasks[position:]...)
	sortTasks(tasks, SortAsc)

	if err := s.save(tasks); err != nil {
		return Task{}, err
	}
	return removed, nil
}

// List loads the journal, sorts by priority rank in the given direction, and
// filters by exact category match when category is non-empty. It never writes.
func (s *Store) List(category string, order SortOrder) ([]Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}

	sortTasks(tasks, order)
	if category == "" {
		return tasks, nil
	}

	var filtered []Task
	for _, t := range tasks {
		if t.Category != nil && *t.Category == category {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Search returns the tasks whose text contains keyword as a case-sensitive
// substring, in the persisted order. Unlike List it applies no re-sort and no
// category filter.
func (s *Store) Search(keyword string) ([]Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}

	var matches []Task
	for _, t := range tasks {
		if strings.Contains(t.Text, keyword) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}
