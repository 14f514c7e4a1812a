package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/dashgridgo/internal/model"
	"gopkg.in/yaml.v3"
)

// Event is one user interaction replayed against the dashboard: the trigger
// records of the pass and, optionally, the targets to refresh.
//
//	targets: [C1, C2]
//	triggers:
//	  - id: region_filter
//	    value: [EU]
//	    triggered: true
//	  - id: C1
//	    property: clickData
//	    value: {points: [{customdata: [EU]}]}
type Event struct {
	Targets  []string       `yaml:"targets" json:"targets,omitempty"`
	Triggers []TriggerEntry `yaml:"triggers" json:"triggers"`
}

// TriggerEntry is the serialized form of a model.TriggerRecord.
type TriggerEntry struct {
	ID        string `yaml:"id" json:"id"`
	Property  string `yaml:"property" json:"property,omitempty"`
	Value     any    `yaml:"value" json:"value"`
	Triggered bool   `yaml:"triggered" json:"triggered,omitempty"`
}

// LoadEvent reads an event from a YAML file.
func LoadEvent(path string) (*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	defer f.Close()
	return ParseEvent(f)
}

// ParseEvent decodes a YAML event. An empty document is an event with no
// triggers.
func ParseEvent(r io.Reader) (*Event, error) {
	var ev Event
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ev); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	for i, tr := range ev.Triggers {
		if tr.ID == "" {
			return nil, fmt.Errorf("trigger #%d: id is required", i)
		}
	}
	return &ev, nil
}

// Records converts the event's triggers into trigger records. Properties
// default to "value"; integer values are widened to float64 so they compare
// equal to the numbers of loaded datasets.
func (e *Event) Records() []model.TriggerRecord {
	records := make([]model.TriggerRecord, len(e.Triggers))
	for i, tr := range e.Triggers {
		prop := tr.Property
		if prop == "" {
			prop = "value"
		}
		records[i] = model.TriggerRecord{
			ComponentID: tr.ID,
			Property:    prop,
			Value:       normalizeValue(tr.Value),
			Triggered:   tr.Triggered,
		}
	}
	return records
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalizeValue(item)
		}
		return out
	}
	return v
}
