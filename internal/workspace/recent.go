package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// RecentFileName is the usage history file inside the data dir.
const RecentFileName = "recent.json"

// Usage tracks how often and how recently a path was opened.
type Usage struct {
	UseCount   int       `json:"useCount"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

// RecentItem is a ranked entry returned by Recent.List.
type RecentItem struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

type recentData struct {
	Paths map[string]Usage `json:"paths"`
}

// Recent ranks opened files and directories by frecency.
type Recent struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	data recentData
}

// NewRecent loads the history at path. A missing or corrupt file starts empty.
func NewRecent(path string) *Recent {
	r := &Recent{
		path: path,
		now:  time.Now,
		data: recentData{Paths: make(map[string]Usage)},
	}
	r.load()
	return r
}

func (r *Recent) load() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return
	}
	var d recentData
	if err := json.Unmarshal(data, &d); err != nil {
		log.Warnf("ignoring corrupt history %s: %v", r.path, err)
		return
	}
	if d.Paths == nil {
		d.Paths = make(map[string]Usage)
	}
	r.data = d
}

func (r *Recent) save() error {
	data, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0600)
}

// Record notes that path was used now and persists the history.
func (r *Recent) Record(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.data.Paths[path]
	u.UseCount++
	u.LastUsedAt = r.now()
	r.data.Paths[path] = u
	return r.save()
}

// Score returns the frecency score of path; unknown paths score 0.
func (r *Recent) Score(path string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.score(path)
}

func (r *Recent) score(path string) float64 {
	u, ok := r.data.Paths[path]
	if !ok {
		return 0
	}

	daysSince := r.now().Sub(u.LastUsedAt).Hours() / 24

	var multiplier float64
	switch {
	case daysSince < 1:
		multiplier = 100
	case daysSince < 7:
		multiplier = 70
	case daysSince < 30:
		multiplier = 50
	case daysSince < 90:
		multiplier = 30
	default:
		multiplier = 10
	}
	return float64(u.UseCount) * multiplier
}

// List returns up to limit paths, highest score first. Paths that no longer
// exist are skipped. limit <= 0 returns all.
func (r *Recent) List(limit int) []RecentItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]RecentItem, 0, len(r.data.Paths))
	for p := range r.data.Paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		items = append(items, RecentItem{Path: p, Score: r.score(p)})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Path < items[j].Path
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
