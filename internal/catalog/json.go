package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-while/go-vitrine/internal/models"
	"github.com/tidwall/gjson"
)

var (
	// ErrMalformed is returned for documents that do not parse as JSON
	ErrMalformed = errors.New("malformed JSON document")
	// ErrNoPosts is returned when the document has no "posts" array
	ErrNoPosts = errors.New("document has no posts array")
)

// JSONFile reads postings from a JSON document on disk
type JSONFile struct {
	Path string
}

func (f JSONFile) Name() string { return f.Path }

func (f JSONFile) ReadPosts() ([]*models.JobPosting, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	return ParsePosts(data)
}

// JSONDocument reads postings from an in-memory JSON document
type JSONDocument struct {
	Label string
	Data  []byte
}

func (d JSONDocument) Name() string {
	if d.Label == "" {
		return "inline document"
	}
	return d.Label
}

func (d JSONDocument) ReadPosts() ([]*models.JobPosting, error) {
	return ParsePosts(d.Data)
}

// ParsePosts extracts the array under the top-level "posts" key.
// Every array element becomes a posting, in order; elements that are not
// objects keep their slot with no fields.
func ParsePosts(data []byte) ([]*models.JobPosting, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top-level value is %s, not an object", ErrNoPosts, doc.Type)
	}
	posts := doc.Get("posts")
	if !posts.Exists() {
		return nil, ErrNoPosts
	}
	if !posts.IsArray() {
		return nil, fmt.Errorf("%w: posts is %s", ErrNoPosts, posts.Type)
	}

	elems := posts.Array()
	jobs := make([]*models.JobPosting, 0, len(elems))
	for _, elem := range elems {
		jobs = append(jobs, postingFromResult(elem))
	}
	return jobs, nil
}

func postingFromResult(r gjson.Result) *models.JobPosting {
	fields, _ := r.Value().(map[string]interface{})
	return models.NewJobPosting(fields)
}
