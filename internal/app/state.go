// Package app provides application state, lifecycle management and events
// for the particle-size analyzer.
package app

import (
	"fmt"
	"log"
	"sync"

	"psd-analyzer/internal/dataset"
	"psd-analyzer/internal/filequeue"
	"psd-analyzer/internal/fitting"
	"psd-analyzer/internal/instrument"
)

// State owns the dataset registry, the batch file queue, the fitter and the
// instrument store on behalf of the presentation layer. The core packages
// assume single-writer access, so State serializes every mutating call.
type State struct {
	mu sync.RWMutex

	// Session
	SessionPath string
	Modified    bool

	Registry    *dataset.Registry
	Queue       *filequeue.Queue
	Fitter      *fitting.Fitter
	Instruments *instrument.Store

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventDatasetAdded EventType = iota
	EventDatasetRemoved
	EventActiveChanged
	EventQueueChanged
	EventFitComplete
	EventSessionLoaded
	EventSessionSaved
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// instrumentLookup adapts the instrument store to the registry's
// ConfigLookup collaborator interface.
type instrumentLookup struct {
	store *instrument.Store
}

func (l instrumentLookup) Get(label string) (*dataset.InstrumentConfig, bool) {
	cfg, ok := l.store.Get(label)
	if !ok {
		return nil, false
	}
	ic := &dataset.InstrumentConfig{}
	if n, ok := cfg.BinCountOverride(); ok {
		ic.BinCount = n
	}
	if col, ok := cfg.DesignatedSizeColumn(); ok {
		ic.SizeColumn = col
	}
	return ic, true
}

// NewState creates a new application state backed by the built-in
// instrument configs.
func NewState() *State {
	return NewStateWithInstruments(instrument.Default())
}

// NewStateWithInstruments creates a state backed by a specific instrument
// store, which tests use to stay independent of the built-ins.
func NewStateWithInstruments(store *instrument.Store) *State {
	return &State{
		Registry:    dataset.NewRegistry(instrumentLookup{store: store}),
		Queue:       filequeue.New(),
		Fitter:      fitting.NewFitter(),
		Instruments: store,
		listeners:   make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the session as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// AddDataset loads a file into the registry.
func (s *State) AddDataset(path, tag, notes string, skipRows int) (string, error) {
	s.mu.Lock()
	id, err := s.Registry.Add(path, tag, notes, skipRows)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	s.SetModified(true)
	s.Emit(EventDatasetAdded, id)
	return id, nil
}

// RemoveDataset removes a dataset and emits events for the removal and any
// resulting active-dataset change.
func (s *State) RemoveDataset(id string) bool {
	s.mu.Lock()
	before := s.Registry.ActiveID()
	ok := s.Registry.Remove(id)
	after := s.Registry.ActiveID()
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.SetModified(true)
	s.Emit(EventDatasetRemoved, id)
	if before != after {
		s.Emit(EventActiveChanged, after)
	}
	return true
}

// SetActive changes the active dataset.
func (s *State) SetActive(id string) bool {
	s.mu.Lock()
	ok := s.Registry.SetActive(id)
	s.mu.Unlock()
	if ok {
		s.Emit(EventActiveChanged, id)
	}
	return ok
}

// QueueFiles appends files to the batch queue.
func (s *State) QueueFiles(paths []string) {
	s.mu.Lock()
	s.Queue.AddFiles(paths)
	s.mu.Unlock()
	s.Emit(EventQueueChanged, nil)
}

// ProcessCurrent loads the queue entry at the cursor into the registry and
// records the outcome on the entry: a successful load marks it processed
// with the new dataset id, a failed load marks it failed with the reason.
func (s *State) ProcessCurrent() (string, error) {
	s.mu.Lock()
	entry, ok := s.Queue.Current()
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("no pending entry at cursor")
	}

	id, err := s.Registry.Add(entry.Path, entry.Tag, entry.Notes, entry.SkipRows)
	if err != nil {
		s.Queue.MarkFailed(err.Error())
		s.mu.Unlock()
		s.Emit(EventQueueChanged, nil)
		log.Printf("queue: load failed for %s: %v", entry.Filename, err)
		return "", err
	}
	s.Queue.MarkProcessed(id)
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventDatasetAdded, id)
	s.Emit(EventQueueChanged, nil)
	return id, nil
}

// SkipCurrent skips the queue entry at the cursor.
func (s *State) SkipCurrent(reason string) bool {
	s.mu.Lock()
	ok := s.Queue.Skip(reason)
	s.mu.Unlock()
	if ok {
		s.Emit(EventQueueChanged, nil)
	}
	return ok
}

// ProcessAll runs the queue to completion, loading every pending entry.
// Load failures are recorded on their entries and do not stop the run.
// Entries already in a terminal state are passed over.
func (s *State) ProcessAll() filequeue.Info {
	for {
		// ProcessCurrent locks for itself, so the lock is scoped to the
		// queue inspection between loads.
		s.mu.Lock()
		entry, ok := s.Queue.Current()
		if !ok {
			info := s.Queue.Info()
			s.mu.Unlock()
			return info
		}
		if entry.Status != filequeue.StatusPending {
			s.Queue.Advance()
			s.mu.Unlock()
			continue
		}
		s.mu.Unlock()
		// Outcome is recorded on the entry; a failure must not stop the run.
		s.ProcessCurrent()
	}
}

// QueueInfo returns a snapshot of the queue's aggregate counts.
func (s *State) QueueInfo() filequeue.Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Queue.Info()
}

// FitActive fits a Gaussian to the active dataset per its analysis
// settings: frequency mode fits the size/frequency pair as a histogram,
// raw mode buckets the size column first.
func (s *State) FitActive() (*fitting.FitResult, error) {
	s.mu.Lock()
	ds, ok := s.Registry.Active()
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("no active dataset")
	}

	var res *fitting.FitResult
	var err error
	switch ds.Settings.DataMode {
	case dataset.ModeFrequency:
		var sizes, freqs []float64
		sizes, freqs, err = ds.SizeFrequency()
		if err == nil {
			res, err = s.Fitter.FitHistogram(sizes, freqs, nil)
		}
	default:
		var sizes []float64
		sizes, err = ds.SizeValues()
		if err == nil {
			res, err = s.Fitter.FitRaw(sizes, ds.Settings.BinCount)
		}
	}
	s.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", ds.Tag, err)
	}
	s.Emit(EventFitComplete, res)
	return res, nil
}
