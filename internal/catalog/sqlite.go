package catalog

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-while/go-vitrine/internal/models"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tidwall/gjson"
)

// SQLiteFile reads postings from a sqlite export with the table
//
//	CREATE TABLE posts (id TEXT NOT NULL, data TEXT)
//
// where data holds the JSON record. Rows are read in rowid order.
// The id column wins over an "id" inside data.
type SQLiteFile struct {
	Path string
}

func (f SQLiteFile) Name() string { return f.Path }

func (f SQLiteFile) ReadPosts() ([]*models.JobPosting, error) {
	// sql.Open would silently create a missing file
	if _, err := os.Stat(f.Path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", "file:"+f.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT id, data FROM posts ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	jobs := []*models.JobPosting{}
	for rows.Next() {
		var id string
		var data sql.NullString
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan posts: %w", err)
		}
		fields := map[string]any{}
		if data.Valid && data.String != "" {
			r := gjson.Parse(data.String)
			if m, ok := r.Value().(map[string]interface{}); ok && gjson.Valid(data.String) {
				fields = m
			} else {
				log.Printf("[CATALOG]: Warning: posting %q in %s has unreadable data column, keeping id only", id, f.Path)
			}
		}
		fields["id"] = id
		jobs = append(jobs, models.NewJobPosting(fields))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}
	return jobs, nil
}
