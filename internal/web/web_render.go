package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-vitrine/internal/site"
)

const (
	baseTemplate  = "base.html"
	errorTemplate = "error"
)

// RequestInfo is the request metadata every template receives as .request
type RequestInfo struct {
	Method    string
	Path      string
	RawPath   string // escaped form of Path as requested
	Host      string
	Scheme    string
	RequestID string
	BaseURL   *url.URL // scheme://host of the request
}

// URL returns the absolute URL of the request path, without query
func (r *RequestInfo) URL() string {
	if r == nil || r.BaseURL == nil {
		return ""
	}
	u := *r.BaseURL
	u.Path = r.Path
	u.RawPath = r.RawPath
	return u.String()
}

func newRequestInfo(c *gin.Context) *RequestInfo {
	scheme := c.Request.URL.Scheme // set by ReverseProxyMiddleware
	if scheme == "" {
		if c.Request.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return &RequestInfo{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		RawPath:   c.Request.URL.EscapedPath(),
		Host:      c.Request.Host,
		Scheme:    scheme,
		RequestID: c.GetString(requestIDKey),
		BaseURL:   &url.URL{Scheme: scheme, Host: c.Request.Host},
	}
}

// renderer holds one parsed template set per page: base.html plus the page template
type renderer struct {
	sets map[string]*template.Template
}

func newRenderer(fsys fs.FS, names []string, funcs template.FuncMap) (*renderer, error) {
	r := &renderer{sets: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		if _, done := r.sets[name]; done {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFS(fsys, baseTemplate, name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.sets[name] = tmpl
	}
	return r, nil
}

// Render executes the named page inside base.html
func (r *renderer) Render(w io.Writer, name string, data site.Context) error {
	tmpl, ok := r.sets[name]
	if !ok {
		return fmt.Errorf("template %q is not loaded", name)
	}
	return tmpl.ExecuteTemplate(w, baseTemplate, data)
}

// templateFuncs are the helpers available to every template
func (s *WebServer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"url_for": func(req *RequestInfo, name string, params ...string) (string, error) {
			return s.Table.URLFor(req.BaseURL, name, params...)
		},
		"https_url_for": func(req *RequestInfo, name string, params ...string) (string, error) {
			u, err := s.Table.URLFor(req.BaseURL, name, params...)
			if err != nil {
				return "", err
			}
			return s.rewriter.Rewrite(u), nil
		},
		"canonical_url": func(req *RequestInfo) string {
			return s.rewriter.Rewrite(req.URL())
		},
		"path_for": func(name string, params ...string) (string, error) {
			return s.Table.PathFor(name, params...)
		},
		"static_url": func(path string) string {
			return "/static/" + strings.TrimPrefix(path, "/")
		},
		"title": site.TagTitle,
	}
}
