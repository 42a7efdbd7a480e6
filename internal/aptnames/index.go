package aptnames

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Index accumulates the distinct complex names ever observed per region so
// selection UIs can be populated without re-querying the registry. Names are
// only ever added; demolished or renamed complexes keep their old entries.
type Index struct {
	mu     sync.Mutex
	path   string
	logger *logrus.Logger
	names  map[string][]string
}

// NewIndex opens the index at path. A missing or unreadable file starts the
// index empty rather than failing.
func NewIndex(path string, logger *logrus.Logger) *Index {
	idx := &Index{
		path:   path,
		logger: logger,
		names:  make(map[string][]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).Warn("Could not load apartment name index")
		}
		return idx
	}
	if err := json.Unmarshal(data, &idx.names); err != nil {
		logger.WithError(err).Error("Failed to parse apartment name index")
		idx.names = make(map[string][]string)
	}
	return idx
}

// Get returns the sorted names observed for a region, empty if never seen.
func (i *Index) Get(lawdCd string) []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]string, len(i.names[lawdCd]))
	copy(out, i.names[lawdCd])
	return out
}

// Merge unions newNames into the region's set, persists, and returns the
// updated sorted list. Merging is idempotent and order-insensitive.
func (i *Index) Merge(lawdCd string, newNames []string) []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	set := make(map[string]bool, len(i.names[lawdCd])+len(newNames))
	for _, n := range i.names[lawdCd] {
		set[n] = true
	}
	for _, n := range newNames {
		if n != "" {
			set[n] = true
		}
	}

	merged := make([]string, 0, len(set))
	for n := range set {
		merged = append(merged, n)
	}
	sort.Strings(merged)
	i.names[lawdCd] = merged

	i.save()

	out := make([]string, len(merged))
	copy(out, merged)
	return out
}

// save persists under the lock. Write failure is logged and swallowed; the
// in-memory index stays authoritative for the session.
func (i *Index) save() {
	data, err := json.MarshalIndent(i.names, "", "    ")
	if err != nil {
		i.logger.WithError(err).Error("Failed to marshal apartment name index")
		return
	}
	if err := os.WriteFile(i.path, data, 0644); err != nil {
		i.logger.WithError(err).Error("Failed to save apartment name index")
	}
}
