// Package catalog holds the read-only job postings list served by the careers pages.
//
// The list is read once from a Source when the process starts and never
// mutated afterwards, so handlers share a *Catalog without locking.
package catalog

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/go-while/go-vitrine/internal/models"
)

// State is the lifecycle state of a Catalog
type State int

const (
	Unloaded State = iota
	Loaded
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Source reads the full set of postings in source order
type Source interface {
	Name() string
	ReadPosts() ([]*models.JobPosting, error)
}

// Catalog is the in-memory collection of job postings.
// A zero Catalog is Unloaded and behaves as empty.
type Catalog struct {
	posts  []*models.JobPosting
	state  State
	source string
}

// Load reads all postings from src. A source that cannot be read or parsed
// yields an empty Loaded catalog; the failure is logged, never returned,
// so the rest of the site stays available.
func Load(src Source) *Catalog {
	c := &Catalog{source: src.Name()}
	posts, err := src.ReadPosts()
	if err != nil {
		log.Printf("[CATALOG]: Warning: failed to load job postings from %s: %v (serving an empty catalog)", c.source, err)
		posts = nil
	}
	if posts == nil {
		posts = []*models.JobPosting{}
	}
	c.posts = posts
	c.state = Loaded
	c.checkIDs()
	log.Printf("[CATALOG]: Loaded %d job postings from %s", len(c.posts), c.source)
	return c
}

// LoadPath loads the catalog from a file, choosing the source by extension
func LoadPath(path string) *Catalog {
	return Load(SourceForPath(path))
}

// SourceForPath returns a SQLiteFile for sqlite extensions and a JSONFile otherwise
func SourceForPath(path string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sq3", ".sqlite", ".sqlite3":
		return SQLiteFile{Path: path}
	default:
		return JSONFile{Path: path}
	}
}

// checkIDs logs records lookup will never find and ids that shadow an earlier record
func (c *Catalog) checkIDs() {
	seen := make(map[string]int, len(c.posts))
	for i, job := range c.posts {
		if job.ID == "" {
			log.Printf("[CATALOG]: Warning: posting #%d in %s has no string id, it is listed but cannot be looked up", i, c.source)
			continue
		}
		if first, dup := seen[job.ID]; dup {
			log.Printf("[CATALOG]: Warning: duplicate id %q in %s (postings #%d and #%d), lookups return #%d", job.ID, c.source, first, i, first)
			continue
		}
		seen[job.ID] = i
	}
}

// ListAll returns every posting in load order.
// The slice is a copy; the postings themselves are shared and must not be modified.
func (c *Catalog) ListAll() []*models.JobPosting {
	if c == nil {
		return []*models.JobPosting{}
	}
	out := make([]*models.JobPosting, len(c.posts))
	copy(out, c.posts)
	return out
}

// FindByID returns the first posting whose id equals id
func (c *Catalog) FindByID(id string) (*models.JobPosting, bool) {
	if c == nil || id == "" {
		return nil, false
	}
	for _, job := range c.posts {
		if job.ID == id {
			return job, true
		}
	}
	return nil, false
}

// Len returns the number of postings
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.posts)
}

// State returns Loaded once Load has run
func (c *Catalog) State() State {
	if c == nil {
		return Unloaded
	}
	return c.state
}

// Source returns the name of the source the catalog was loaded from
func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}
