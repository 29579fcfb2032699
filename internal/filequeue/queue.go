// Package filequeue drives batch preview-and-load workflows over a list of
// candidate files, tracking a cursor and per-file outcomes.
package filequeue

import (
	"path/filepath"
	"time"
)

// Status is the lifecycle state of one queued file.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Entry is one queued file. Entries are returned by value everywhere, so
// callers always hold snapshots that cannot reach back into the queue.
type Entry struct {
	Path      string
	Filename  string
	Tag       string
	SkipRows  int
	Status    Status
	DatasetID string // set only when Status is processed
	ErrorMsg  string // set only when Status is failed or skipped
	AddedAt   time.Time
	Notes     string
}

// Queue is an ordered file list with a cursor in [0, len]; cursor == len
// means the queue is complete. Outcome logs are append-only records of
// entries reaching each terminal status. Not safe for concurrent use.
type Queue struct {
	entries   []Entry
	cursor    int
	processed []Entry
	failed    []Entry
	skipped   []Entry
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Add appends a file with an auto-generated tag and returns its index.
func (q *Queue) Add(path string) int {
	e := Entry{
		Path:     path,
		Filename: filepath.Base(path),
		Status:   StatusPending,
		AddedAt:  time.Now(),
	}
	e.Tag = autoTag(e.Filename, q.existingTags())
	q.entries = append(q.entries, e)
	return len(q.entries) - 1
}

// AddFiles appends several files in order.
func (q *Queue) AddFiles(paths []string) {
	for _, p := range paths {
		q.Add(p)
	}
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Cursor returns the current cursor position.
func (q *Queue) Cursor() int {
	return q.cursor
}

// IsComplete reports whether the cursor has moved past the last entry.
func (q *Queue) IsComplete() bool {
	return q.cursor >= len(q.entries)
}

// Current returns a snapshot of the entry at the cursor.
func (q *Queue) Current() (Entry, bool) {
	if q.cursor < 0 || q.cursor >= len(q.entries) {
		return Entry{}, false
	}
	return q.entries[q.cursor], true
}

// Entry returns a snapshot of the entry at index.
func (q *Queue) Entry(index int) (Entry, bool) {
	if index < 0 || index >= len(q.entries) {
		return Entry{}, false
	}
	return q.entries[index], true
}

// Entries returns a snapshot of all entries in order.
func (q *Queue) Entries() []Entry {
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Processed returns the append-only log of processed entries.
func (q *Queue) Processed() []Entry {
	out := make([]Entry, len(q.processed))
	copy(out, q.processed)
	return out
}

// Failed returns the append-only log of failed entries.
func (q *Queue) Failed() []Entry {
	out := make([]Entry, len(q.failed))
	copy(out, q.failed)
	return out
}

// Skipped returns the append-only log of skipped entries.
func (q *Queue) Skipped() []Entry {
	out := make([]Entry, len(q.skipped))
	copy(out, q.skipped)
	return out
}

// MarkProcessed transitions the entry at the cursor from pending to
// processed, records the dataset id, and advances the cursor.
func (q *Queue) MarkProcessed(datasetID string) bool {
	e := q.pendingAtCursor()
	if e == nil {
		return false
	}
	e.Status = StatusProcessed
	e.DatasetID = datasetID
	e.ErrorMsg = ""
	q.processed = append(q.processed, *e)
	q.cursor++
	return true
}

// MarkFailed transitions the entry at the cursor from pending to failed,
// records the message, and advances the cursor.
func (q *Queue) MarkFailed(message string) bool {
	e := q.pendingAtCursor()
	if e == nil {
		return false
	}
	e.Status = StatusFailed
	e.ErrorMsg = message
	e.DatasetID = ""
	q.failed = append(q.failed, *e)
	q.cursor++
	return true
}

// Skip transitions the entry at the cursor from pending to skipped,
// records the reason, and advances the cursor.
func (q *Queue) Skip(reason string) bool {
	e := q.pendingAtCursor()
	if e == nil {
		return false
	}
	e.Status = StatusSkipped
	e.ErrorMsg = reason
	e.DatasetID = ""
	q.skipped = append(q.skipped, *e)
	q.cursor++
	return true
}

func (q *Queue) pendingAtCursor() *Entry {
	if q.cursor < 0 || q.cursor >= len(q.entries) {
		return nil
	}
	e := &q.entries[q.cursor]
	if e.Status != StatusPending {
		return nil
	}
	return e
}

// Advance moves the cursor forward without touching entry status. Moving
// past the last entry leaves the queue complete.
func (q *Queue) Advance() {
	if q.cursor < len(q.entries) {
		q.cursor++
	}
}

// Retreat moves the cursor backward without touching entry status. A
// revisited terminal entry keeps its status.
func (q *Queue) Retreat() {
	if q.cursor > 0 {
		q.cursor--
	}
}

// JumpTo moves the cursor to an arbitrary valid index without touching
// entry status.
func (q *Queue) JumpTo(index int) bool {
	if index < 0 || index >= len(q.entries) {
		return false
	}
	q.cursor = index
	return true
}

// Reset rewinds the cursor, clears the outcome logs, and returns every
// entry to pending for a full re-run. Entries and their paths survive.
func (q *Queue) Reset() {
	q.cursor = 0
	q.processed = nil
	q.failed = nil
	q.skipped = nil
	for i := range q.entries {
		q.entries[i].Status = StatusPending
		q.entries[i].DatasetID = ""
		q.entries[i].ErrorMsg = ""
	}
}

// Clear removes every entry and resets the cursor and logs.
func (q *Queue) Clear() {
	q.entries = nil
	q.cursor = 0
	q.processed = nil
	q.failed = nil
	q.skipped = nil
}

// SetSkipRows adjusts the row-skip count of the entry at index.
func (q *Queue) SetSkipRows(index, skipRows int) bool {
	if index < 0 || index >= len(q.entries) || skipRows < 0 {
		return false
	}
	q.entries[index].SkipRows = skipRows
	return true
}

// SetTag replaces the tag of the entry at index.
func (q *Queue) SetTag(index int, tag string) bool {
	if index < 0 || index >= len(q.entries) {
		return false
	}
	q.entries[index].Tag = tag
	return true
}

// SetNotes replaces the notes of the entry at index.
func (q *Queue) SetNotes(index int, notes string) bool {
	if index < 0 || index >= len(q.entries) {
		return false
	}
	q.entries[index].Notes = notes
	return true
}

// Info is a derived, read-only view of queue progress.
type Info struct {
	Total       int
	Pending     int
	Processed   int
	Failed      int
	Skipped     int
	Cursor      int
	Complete    bool
	SuccessRate float64 // processed/total*100, 0 when empty
}

// Info returns the progress snapshot. It never mutates the queue.
func (q *Queue) Info() Info {
	info := Info{
		Total:    len(q.entries),
		Cursor:   q.cursor,
		Complete: q.IsComplete(),
	}
	for _, e := range q.entries {
		switch e.Status {
		case StatusProcessed:
			info.Processed++
		case StatusFailed:
			info.Failed++
		case StatusSkipped:
			info.Skipped++
		default:
			info.Pending++
		}
	}
	if info.Total > 0 {
		info.SuccessRate = float64(info.Processed) / float64(info.Total) * 100
	}
	return info
}
