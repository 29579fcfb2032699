package dataset

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"psd-analyzer/internal/loader"
)

// ConfigLookup resolves instrument-type labels to configuration records.
// It is supplied by the caller; a nil lookup means no instrument defaults.
type ConfigLookup interface {
	Get(label string) (*InstrumentConfig, bool)
}

// InstrumentConfig is the shape of a config record the registry consumes:
// an optional bin-count override and an optional designated size column.
type InstrumentConfig struct {
	BinCount   int    // 0 means no override
	SizeColumn string // "" means no designated column
}

// Registry owns loaded datasets in insertion order, tracks the active
// dataset, and rotates the color palette. Each Registry carries its own
// palette cursor and active pointer, so independent registries never
// interfere. Not safe for concurrent use.
type Registry struct {
	datasets    map[string]*Dataset
	order       []string
	activeID    string // "" when no dataset is active
	colorCursor int
	lookup      ConfigLookup
}

// NewRegistry creates an empty registry using the given config lookup.
func NewRegistry(lookup ConfigLookup) *Registry {
	return &Registry{
		datasets: make(map[string]*Dataset),
		lookup:   lookup,
	}
}

// Add loads a file and registers it as a new dataset, returning the new
// dataset id. The operation is all-or-nothing: a load failure leaves the
// registry exactly as it was. An empty tag defaults to the filename.
func (r *Registry) Add(path, tag, notes string, skipRows int) (string, error) {
	data, err := loader.Load(path, skipRows)
	if err != nil {
		return "", fmt.Errorf("add dataset: %w", err)
	}

	binCount := DefaultBinCount
	sizeColumn := data.SizeColumn
	if r.lookup != nil {
		if cfg, ok := r.lookup.Get(data.Instrument); ok {
			if cfg.BinCount > 0 {
				binCount = cfg.BinCount
			}
			// The designated column only wins when it actually exists in
			// this file; otherwise keep the auto-detected one.
			if cfg.SizeColumn != "" && data.HasColumn(cfg.SizeColumn) {
				sizeColumn = cfg.SizeColumn
			}
		}
	}

	filename := filepath.Base(path)
	if tag == "" {
		tag = filename
	}

	mode := ModeRaw
	if data.FreqColumn != "" {
		mode = ModeFrequency
	}

	ds := &Dataset{
		ID:         uuid.New().String(),
		Filename:   filename,
		Path:       path,
		Tag:        tag,
		Notes:      notes,
		Color:      Palette[r.colorCursor%len(Palette)],
		Created:    time.Now(),
		SkipRows:   skipRows,
		Instrument: data.Instrument,
		Settings: AnalysisSettings{
			DataMode:   mode,
			BinCount:   binCount,
			SizeColumn: sizeColumn,
			FreqColumn: data.FreqColumn,
			ShowStats:  true,
			ShowFit:    false,
		},
		Data: data,
	}
	r.colorCursor++
	r.datasets[ds.ID] = ds
	r.order = append(r.order, ds.ID)
	if len(r.order) == 1 {
		r.activeID = ds.ID
	}
	return ds.ID, nil
}

// Get returns the dataset with the given id.
func (r *Registry) Get(id string) (*Dataset, bool) {
	ds, ok := r.datasets[id]
	return ds, ok
}

// List returns the datasets in insertion order.
func (r *Registry) List() []*Dataset {
	out := make([]*Dataset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.datasets[id])
	}
	return out
}

// Count returns the number of registered datasets.
func (r *Registry) Count() int {
	return len(r.order)
}

// Remove deletes a dataset. If the removed dataset was active, the first
// remaining dataset in insertion order becomes active, or none remain and
// the active pointer clears.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.datasets[id]; !ok {
		return false
	}
	delete(r.datasets, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.activeID == id {
		if len(r.order) > 0 {
			r.activeID = r.order[0]
		} else {
			r.activeID = ""
		}
	}
	return true
}

// ActiveID returns the active dataset id, or "" when none is active.
func (r *Registry) ActiveID() string {
	return r.activeID
}

// Active returns the active dataset.
func (r *Registry) Active() (*Dataset, bool) {
	if r.activeID == "" {
		return nil, false
	}
	ds, ok := r.datasets[r.activeID]
	return ds, ok
}

// SetActive makes the dataset with the given id active.
func (r *Registry) SetActive(id string) bool {
	if _, ok := r.datasets[id]; !ok {
		return false
	}
	r.activeID = id
	return true
}

// NextID returns the id following the active one in insertion order,
// wrapping circularly. It returns "" when there is no active dataset or
// the active id is missing from the order list.
func (r *Registry) NextID() string {
	return r.neighborID(1)
}

// PreviousID returns the id preceding the active one in insertion order,
// wrapping circularly.
func (r *Registry) PreviousID() string {
	return r.neighborID(-1)
}

func (r *Registry) neighborID(step int) string {
	if r.activeID == "" || len(r.order) == 0 {
		return ""
	}
	for i, id := range r.order {
		if id == r.activeID {
			n := len(r.order)
			return r.order[((i+step)%n+n)%n]
		}
	}
	return ""
}

// UpdateTag replaces a dataset's tag.
func (r *Registry) UpdateTag(id, tag string) bool {
	ds, ok := r.datasets[id]
	if !ok {
		return false
	}
	ds.Tag = tag
	return true
}

// UpdateNotes replaces a dataset's notes.
func (r *Registry) UpdateNotes(id, notes string) bool {
	ds, ok := r.datasets[id]
	if !ok {
		return false
	}
	ds.Notes = notes
	return true
}

// UpdateInstrument replaces a dataset's instrument-type label.
func (r *Registry) UpdateInstrument(id, label string) bool {
	ds, ok := r.datasets[id]
	if !ok {
		return false
	}
	ds.Instrument = label
	return true
}

// UpdateSettings merges a partial settings update into a dataset. A size
// column update naming a column absent from the loaded table is rejected;
// clearing it with "" is allowed.
func (r *Registry) UpdateSettings(id string, upd SettingsUpdate) bool {
	ds, ok := r.datasets[id]
	if !ok {
		return false
	}
	if upd.SizeColumn != nil && *upd.SizeColumn != "" && !ds.Data.HasColumn(*upd.SizeColumn) {
		return false
	}
	if upd.DataMode != nil {
		ds.Settings.DataMode = *upd.DataMode
	}
	if upd.BinCount != nil {
		ds.Settings.BinCount = *upd.BinCount
	}
	if upd.SizeColumn != nil {
		ds.Settings.SizeColumn = *upd.SizeColumn
	}
	if upd.FreqColumn != nil {
		ds.Settings.FreqColumn = *upd.FreqColumn
	}
	if upd.ShowStats != nil {
		ds.Settings.ShowStats = *upd.ShowStats
	}
	if upd.ShowFit != nil {
		ds.Settings.ShowFit = *upd.ShowFit
	}
	return true
}

// ClearAll empties the registry, clears the active pointer, and rewinds
// the palette cursor. A cleared registry is indistinguishable from a
// fresh one.
func (r *Registry) ClearAll() {
	r.datasets = make(map[string]*Dataset)
	r.order = nil
	r.activeID = ""
	r.colorCursor = 0
}
