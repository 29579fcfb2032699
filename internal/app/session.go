package app

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"psd-analyzer/internal/dataset"
	"psd-analyzer/internal/filequeue"
)

// SessionFile is the JSON structure of a saved analyzer session. Loaded
// arrays are not persisted; reloading a session re-runs the loader against
// each recorded source path.
type SessionFile struct {
	Version  int       `json:"version"`
	Name     string    `json:"name,omitempty"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	Datasets   []SessionDataset `json:"datasets,omitempty"`
	QueueFiles []SessionQueued  `json:"queue_files,omitempty"`
	ActiveTag  string           `json:"active_tag,omitempty"`
}

// SessionDataset records how to re-materialize one dataset.
type SessionDataset struct {
	Path       string `json:"path"`
	Tag        string `json:"tag"`
	Notes      string `json:"notes,omitempty"`
	SkipRows   int    `json:"skip_rows,omitempty"`
	Instrument string `json:"instrument,omitempty"`

	DataMode   string `json:"data_mode,omitempty"`
	BinCount   int    `json:"bin_count,omitempty"`
	SizeColumn string `json:"size_column,omitempty"`
	FreqColumn string `json:"freq_column,omitempty"`
	ShowStats  bool   `json:"show_stats"`
	ShowFit    bool   `json:"show_fit"`
}

// SessionQueued records one still-queued file path.
type SessionQueued struct {
	Path     string `json:"path"`
	Tag      string `json:"tag,omitempty"`
	SkipRows int    `json:"skip_rows,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// SaveSession writes the current session to path.
func (s *State) SaveSession(path string) error {
	s.mu.RLock()
	sf := SessionFile{
		Version:  1,
		Created:  time.Now(),
		Modified: time.Now(),
	}
	if active, ok := s.Registry.Active(); ok {
		sf.ActiveTag = active.Tag
	}
	for _, ds := range s.Registry.List() {
		sf.Datasets = append(sf.Datasets, SessionDataset{
			Path:       ds.Path,
			Tag:        ds.Tag,
			Notes:      ds.Notes,
			SkipRows:   ds.SkipRows,
			Instrument: ds.Instrument,
			DataMode:   string(ds.Settings.DataMode),
			BinCount:   ds.Settings.BinCount,
			SizeColumn: ds.Settings.SizeColumn,
			FreqColumn: ds.Settings.FreqColumn,
			ShowStats:  ds.Settings.ShowStats,
			ShowFit:    ds.Settings.ShowFit,
		})
	}
	for _, e := range s.Queue.Entries() {
		if e.Status != filequeue.StatusPending {
			continue
		}
		sf.QueueFiles = append(sf.QueueFiles, SessionQueued{
			Path:     e.Path,
			Tag:      e.Tag,
			SkipRows: e.SkipRows,
			Notes:    e.Notes,
		})
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	s.mu.Lock()
	s.SessionPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventSessionSaved, path)
	return nil
}

// LoadSession reads a session file and re-materializes its datasets by
// re-running the loader per entry. A dataset that no longer loads is
// logged and dropped; the session load itself does not fail.
func (s *State) LoadSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sf SessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return err
	}

	s.mu.Lock()
	s.Registry.ClearAll()
	s.Queue.Clear()

	for _, rec := range sf.Datasets {
		id, err := s.Registry.Add(rec.Path, rec.Tag, rec.Notes, rec.SkipRows)
		if err != nil {
			log.Printf("session: dropping dataset %s: %v", rec.Tag, err)
			continue
		}
		if rec.Instrument != "" {
			s.Registry.UpdateInstrument(id, rec.Instrument)
		}
		mode := dataset.DataMode(rec.DataMode)
		s.Registry.UpdateSettings(id, dataset.SettingsUpdate{
			DataMode:   &mode,
			BinCount:   &rec.BinCount,
			SizeColumn: &rec.SizeColumn,
			FreqColumn: &rec.FreqColumn,
			ShowStats:  &rec.ShowStats,
			ShowFit:    &rec.ShowFit,
		})
		if rec.Tag == sf.ActiveTag {
			s.Registry.SetActive(id)
		}
	}

	for _, q := range sf.QueueFiles {
		idx := s.Queue.Add(q.Path)
		if q.Tag != "" {
			s.Queue.SetTag(idx, q.Tag)
		}
		s.Queue.SetSkipRows(idx, q.SkipRows)
		s.Queue.SetNotes(idx, q.Notes)
	}

	s.SessionPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventSessionLoaded, path)
	return nil
}
