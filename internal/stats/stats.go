// Package stats holds the per data type outcome counters reported by an import.
package stats

import "sort"

// Counter names one of the outcome counters of an Entry
type Counter string

const (
	Created  Counter = "created"
	Updated  Counter = "updated"
	Errored  Counter = "errored"
	Deleted  Counter = "deleted"
	Restored Counter = "restored"
	Skipped  Counter = "skipped"
)

const referenceDataModel = "ReferenceData"

// Entry counts row outcomes for one data type. Counters only ever grow.
type Entry struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Errored  int `json:"errored"`
	Deleted  int `json:"deleted"`
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
}

// Total is the number of rows accounted for by the entry
func (e Entry) Total() int {
	return e.Created + e.Updated + e.Errored + e.Deleted + e.Restored + e.Skipped
}

func (e *Entry) add(o Entry) {
	e.Created += o.Created
	e.Updated += o.Updated
	e.Errored += o.Errored
	e.Deleted += o.Deleted
	e.Restored += o.Restored
	e.Skipped += o.Skipped
}

func (e *Entry) increment(c Counter) {
	switch c {
	case Created:
		e.Created++
	case Updated:
		e.Updated++
	case Errored:
		e.Errored++
	case Deleted:
		e.Deleted++
	case Restored:
		e.Restored++
	case Skipped:
		e.Skipped++
	}
}

// Map holds entries keyed by Key
type Map map[string]Entry

// Increment bumps one counter, creating the entry on first use
func (m Map) Increment(key string, c Counter) {
	e := m[key]
	e.increment(c)
	m[key] = e
}

// Keys returns the keys in sorted order
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Key builds the stats key for a row. Reference data is split per subtype, every other
// model is counted under its own name.
func Key(model, dataType string) string {
	if model == referenceDataModel {
		return referenceDataModel + "/" + dataType
	}
	return model
}

// Coalesce sums partial maps key by key. Keys missing from every input are absent from the
// result, and the result does not depend on the order or grouping of the inputs.
func Coalesce(partials ...Map) Map {
	out := Map{}
	for _, partial := range partials {
		for key, entry := range partial {
			sum := out[key]
			sum.add(entry)
			out[key] = sum
		}
	}
	return out
}
