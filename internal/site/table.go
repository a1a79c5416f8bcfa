package site

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-while/go-vitrine/internal/catalog"
)

var (
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrUnknownRoute   = errors.New("unknown route")
	ErrMissingParam   = errors.New("missing route parameter")
)

// Context is the variable mapping handed to the renderer for one render
type Context map[string]any

// Resolution is what a route resolves to: a template to render and its context
type Resolution struct {
	Template string
	Context  Context
	Status   int
}

// Route is a registrable (name, pattern) pair. Patterns use :param segments.
type Route struct {
	Name     string
	Pattern  string
	Template string
	Current  string // navigation tag
}

// NavItem is one entry of the navigation bar
type NavItem struct {
	Name   string
	Title  string
	Path   string
	Active bool
}

// Table maps route patterns to templates and context.
// It is built once at startup and only read afterwards.
type Table struct {
	pages     []Page
	byPattern map[string]Page
	routes    []Route
	patterns  map[string]string // route name -> pattern
	catalog   *catalog.Catalog
}

// NewTable builds the route table from pages plus the careers catalog routes.
// Route names and paths must be unique.
func NewTable(pages []Page, cat *catalog.Catalog) (*Table, error) {
	t := &Table{
		byPattern: make(map[string]Page, len(pages)),
		patterns:  make(map[string]string, len(pages)+2),
		catalog:   cat,
	}
	for _, p := range pages {
		if p.Name == "" || p.Path == "" || p.Template == "" {
			return nil, fmt.Errorf("page %+v: name, path and template are required", p)
		}
		if err := t.add(Route{Name: p.Name, Pattern: p.Path, Template: p.Template, Current: p.Current}); err != nil {
			return nil, err
		}
		t.pages = append(t.pages, p)
		t.byPattern[p.Path] = p
	}
	if err := t.add(Route{Name: RouteJobList, Pattern: JobListPath, Template: TemplateJobList, Current: CurrentJobList}); err != nil {
		return nil, err
	}
	if err := t.add(Route{Name: RouteJobDetail, Pattern: JobDetailPath, Template: TemplateJobDetail, Current: CurrentCareers}); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) add(r Route) error {
	if _, dup := t.patterns[r.Name]; dup {
		return fmt.Errorf("%w: name %q", ErrDuplicateRoute, r.Name)
	}
	for _, existing := range t.routes {
		if existing.Pattern == r.Pattern {
			return fmt.Errorf("%w: path %q (%s and %s)", ErrDuplicateRoute, r.Pattern, existing.Name, r.Name)
		}
	}
	t.patterns[r.Name] = r.Pattern
	t.routes = append(t.routes, r)
	return nil
}

// Resolve maps a matched route pattern and its path parameters to a template and context.
// It returns false for patterns the table does not know.
func (t *Table) Resolve(pattern string, params map[string]string) (Resolution, bool) {
	if p, ok := t.byPattern[pattern]; ok {
		return Resolution{
			Template: p.Template,
			Context:  Context{"current": p.Current},
			Status:   http.StatusOK,
		}, true
	}

	switch pattern {
	case JobListPath:
		return Resolution{
			Template: TemplateJobList,
			Context:  Context{"current": CurrentJobList, "jobs": t.catalog.ListAll()},
			Status:   http.StatusOK,
		}, true

	case JobDetailPath:
		id := params["id"]
		job, found := t.catalog.FindByID(id)
		if !found {
			return Resolution{
				Template: TemplateJobNotFound,
				Context:  Context{"current": CurrentCareers, "id": id},
				Status:   http.StatusNotFound,
			}, true
		}
		return Resolution{
			Template: TemplateJobDetail,
			Context:  Context{"current": CurrentCareers, "job": job},
			Status:   http.StatusOK,
		}, true
	}
	return Resolution{}, false
}

// Routes returns every registrable route in table order
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Pages returns the fixed pages in table order
func (t *Table) Pages() []Page {
	out := make([]Page, len(t.pages))
	copy(out, t.pages)
	return out
}

// Templates returns each distinct template identifier the table can resolve to
func (t *Table) Templates() []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range append(t.routeTemplates(), TemplateJobNotFound) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func (t *Table) routeTemplates() []string {
	out := make([]string, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, r.Template)
	}
	return out
}

// Catalog returns the postings catalog the careers routes read from
func (t *Table) Catalog() *catalog.Catalog {
	return t.catalog
}

// Nav returns the navigation bar with the entry tagged current marked active
func (t *Table) Nav(current string) []NavItem {
	var nav []NavItem
	for _, p := range t.pages {
		if !p.InNav {
			continue
		}
		nav = append(nav, NavItem{
			Name:   p.Name,
			Title:  PageTitle(p),
			Path:   p.Path,
			Active: p.Current == current,
		})
	}
	return nav
}

// PathFor builds the path of a named route. params are key/value pairs
// substituted into the :key segments of the pattern.
func (t *Table) PathFor(name string, params ...string) (string, error) {
	pattern, ok := t.patterns[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	if len(params)%2 != 0 {
		return "", fmt.Errorf("route %q: params must be key/value pairs, got %d values", name, len(params))
	}
	values := make(map[string]string, len(params)/2)
	for i := 0; i < len(params); i += 2 {
		values[params[i]] = params[i+1]
	}

	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		v, ok := values[seg[1:]]
		if !ok || v == "" {
			return "", fmt.Errorf("%w: %q for route %q", ErrMissingParam, seg[1:], name)
		}
		segments[i] = url.PathEscape(v)
	}
	return strings.Join(segments, "/"), nil
}

// URLFor builds the absolute URL of a named route relative to base
func (t *Table) URLFor(base *url.URL, name string, params ...string) (string, error) {
	path, err := t.PathFor(name, params...)
	if err != nil {
		return "", err
	}
	if base == nil {
		return path, nil
	}
	u := *base
	u.Path = path
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	// keep escaped id segments intact
	if escaped, err := url.PathUnescape(path); err == nil && escaped != path {
		u.Path = escaped
		u.RawPath = path
	}
	return u.String(), nil
}

// TitleFor returns the display title for a navigation tag, preferring the
// title of the page carrying that tag
func (t *Table) TitleFor(current string) string {
	for _, p := range t.pages {
		if p.Current == current {
			return PageTitle(p)
		}
	}
	return TagTitle(current)
}
