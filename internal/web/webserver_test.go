package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-vitrine/internal/catalog"
	"github.com/go-while/go-vitrine/internal/config"
	"github.com/go-while/go-vitrine/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPostings = `{"posts":[
	{"id":"42","title":"Engineer","location":"Lyon","description":"Build things"},
	{"id":"7","title":"Designer <UI>"},
	{"title":"Draft without id"}
]}`

// httptest.NewRequest uses 192.0.2.1 as the remote address
const httptestPeer = "192.0.2.1"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, doc string, mutate func(*config.MainConfig)) *WebServer {
	t.Helper()
	cfg := config.NewDefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	table, err := site.NewTable(site.DefaultPages(), catalog.Load(catalog.JSONDocument{Label: "test", Data: []byte(doc)}))
	require.NoError(t, err)
	s, err := NewServer(cfg, table)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *WebServer, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestAboutPage(t *testing.T) {
	s := newTestServer(t, testPostings, nil)
	rec := get(t, s, "/about")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	doc := parse(t, rec)
	current, _ := doc.Find("body").Attr("data-current")
	assert.Equal(t, "about", current)
	assert.Equal(t, 1, doc.Find("nav.navbar li.active").Length())
	assert.Equal(t, "About", strings.TrimSpace(doc.Find("nav.navbar li.active a").Text()))
	assert.Contains(t, doc.Find("title").Text(), "About")
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "http://example.com/about", canonical)
}

func TestAllFixedPagesRender(t *testing.T) {
	s := newTestServer(t, testPostings, nil)
	for _, p := range site.DefaultPages() {
		t.Run(p.Name, func(t *testing.T) {
			rec := get(t, s, p.Path)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			current, _ := parse(t, rec).Find("body").Attr("data-current")
			assert.Equal(t, p.Current, current)
		})
	}
}

func TestJobDetail(t *testing.T) {
	s := newTestServer(t, testPostings, nil)

	rec := get(t, s, "/carrieres/job/42")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parse(t, rec)
	assert.Equal(t, "Engineer", strings.TrimSpace(doc.Find("h1.job-title").Text()))
	assert.Equal(t, "Lyon", strings.TrimSpace(doc.Find(".job-detail .job-meta").Text()))
	assert.Contains(t, doc.Find("title").Text(), "Engineer")
	id, _ := doc.Find(".job-detail").Attr("data-id")
	assert.Equal(t, "42", id)

	rec = get(t, s, "/carrieres/job/99")
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc = parse(t, rec)
	assert.Equal(t, 1, doc.Find("section.not-found").Length())
	assert.Equal(t, "99", doc.Find("section.not-found code").Text())
	assert.Equal(t, 0, doc.Find(".job-detail").Length())
}

func TestJobDetailEscapesFields(t *testing.T) {
	s := newTestServer(t, testPostings, nil)
	rec := get(t, s, "/carrieres/job/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Designer &lt;UI&gt;")
	assert.NotContains(t, rec.Body.String(), "Designer <UI>")
}

func TestJobList(t *testing.T) {
	testCases := []struct {
		name      string
		httpsURLs bool
		proxies   []string
		headers   []string
		wantHref  string
	}{
		{name: "rewrite disabled", wantHref: "http://example.com/carrieres/job/42"},
		{name: "rewrite enabled", httpsURLs: true, wantHref: "https://example.com/carrieres/job/42"},
		{name: "behind tls proxy", proxies: []string{httptestPeer}, headers: []string{"X-Forwarded-Proto", "https"}, wantHref: "https://example.com/carrieres/job/42"},
		{name: "forwarded proto from untrusted peer", headers: []string{"X-Forwarded-Proto", "https"}, wantHref: "http://example.com/carrieres/job/42"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, testPostings, func(cfg *config.MainConfig) {
				cfg.Web.HTTPSURLs = tc.httpsURLs
				if tc.proxies != nil {
					cfg.Web.TrustedProxies = tc.proxies
				}
			})
			rec := get(t, s, "/carrieres/offres", tc.headers...)
			require.Equal(t, http.StatusOK, rec.Code)

			doc := parse(t, rec)
			jobs := doc.Find("ul.jobs li.job")
			require.Equal(t, 2, jobs.Length())
			first, _ := jobs.First().Attr("data-id")
			assert.Equal(t, "42", first)
			href, _ := jobs.First().Find("a").Attr("href")
			assert.Equal(t, tc.wantHref, href)
			assert.Equal(t, "Lyon", strings.TrimSpace(jobs.First().Find(".job-meta").Text()))
		})
	}
}

func TestJobIDWithSlash(t *testing.T) {
	s := newTestServer(t, `{"posts":[{"id":"eng/42","title":"Platform Engineer"}]}`, nil)

	doc := parse(t, get(t, s, "/carrieres/offres"))
	href, ok := doc.Find("li.job a").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "http://example.com/carrieres/job/eng%2F42", href)

	rec := get(t, s, strings.TrimPrefix(href, "http://example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	doc = parse(t, rec)
	id, _ := doc.Find(".job-detail").Attr("data-id")
	assert.Equal(t, "eng/42", id)
	assert.Equal(t, "Platform Engineer", strings.TrimSpace(doc.Find("h1.job-title").Text()))
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, href, canonical)

	rec = get(t, s, "/carrieres/job/eng%2F99")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "eng/99", parse(t, rec).Find("section.not-found code").Text())
}

func TestForwardedHeaders(t *testing.T) {
	testCases := []struct {
		name          string
		proxies       []string
		wantCanonical string
		wantJobHref   string
	}{
		{
			name:          "untrusted peer",
			wantCanonical: "http://example.com/carrieres/offres",
			wantJobHref:   "http://example.com/carrieres/job/42",
		},
		{
			name:          "trusted proxy ip",
			proxies:       []string{httptestPeer},
			wantCanonical: "https://www.example.org/carrieres/offres",
			wantJobHref:   "https://www.example.org/carrieres/job/42",
		},
		{
			name:          "trusted proxy cidr",
			proxies:       []string{"192.0.2.0/24"},
			wantCanonical: "https://www.example.org/carrieres/offres",
			wantJobHref:   "https://www.example.org/carrieres/job/42",
		},
		{
			name:          "other proxy trusted",
			proxies:       []string{"10.0.0.0/8"},
			wantCanonical: "http://example.com/carrieres/offres",
			wantJobHref:   "http://example.com/carrieres/job/42",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, testPostings, func(cfg *config.MainConfig) {
				cfg.Web.TrustedProxies = tc.proxies
			})
			rec := get(t, s, "/carrieres/offres", "X-Forwarded-Host", "www.example.org", "X-Forwarded-Proto", "https")
			require.Equal(t, http.StatusOK, rec.Code)

			doc := parse(t, rec)
			canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
			assert.Equal(t, tc.wantCanonical, canonical)
			href, _ := doc.Find("li.job a").First().Attr("href")
			assert.Equal(t, tc.wantJobHref, href)
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := parseTrustedProxies([]string{"127.0.0.1", "::1", "10.1.2.3/8"})
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "127.0.0.1/32", prefixes[0].String())
	assert.Equal(t, "::1/128", prefixes[1].String())
	assert.Equal(t, "10.0.0.0/8", prefixes[2].String())

	_, err = parseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
}

func TestCareersLinkUsesSchemeRewrite(t *testing.T) {
	off := newTestServer(t, testPostings, nil)
	href, _ := parse(t, get(t, off, "/carrieres")).Find("a.jobs-link").Attr("href")
	assert.Equal(t, "http://example.com/carrieres/offres", href)

	on := newTestServer(t, testPostings, func(cfg *config.MainConfig) { cfg.Web.HTTPSURLs = true })
	doc := parse(t, get(t, on, "/carrieres"))
	href, _ = doc.Find("a.jobs-link").Attr("href")
	assert.Equal(t, "https://example.com/carrieres/offres", href)
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://example.com/carrieres", canonical)
}

func TestEmptyCatalog(t *testing.T) {
	s := newTestServer(t, `not json`, nil)

	rec := get(t, s, "/carrieres/offres")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parse(t, rec)
	assert.Equal(t, 0, doc.Find("li.job").Length())
	assert.Equal(t, 1, doc.Find("li.empty").Length())

	// the rest of the site is unaffected
	assert.Equal(t, http.StatusOK, get(t, s, "/").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/carrieres/job/42").Code)
}

func TestJobListWithoutListableRecords(t *testing.T) {
	s := newTestServer(t, `{"posts":[{"title":"Draft"},5,{"id":7}]}`, nil)

	doc := parse(t, get(t, s, "/carrieres/offres"))
	assert.Equal(t, 0, doc.Find("li.job").Length())
	assert.Equal(t, 1, doc.Find("li.empty").Length())
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, testPostings, nil)
	rec := get(t, s, "/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc := parse(t, rec)
	assert.Equal(t, "404", strings.TrimSpace(doc.Find("section.error h1").Text()))
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t, testPostings, nil)
	rec := get(t, s, "/ping", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "pong", rec.Body.String())
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, testPostings, nil)

	rec := get(t, s, "/static/css/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	assert.Equal(t, http.StatusOK, get(t, s, "/static/js/animation.js").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/static/").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/static/missing.css").Code)

	rec = get(t, s, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User-agent: *")
}

func TestStaticDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("bonjour"), 0o644))
	s := newTestServer(t, testPostings, func(cfg *config.MainConfig) { cfg.Web.StaticDir = dir })

	rec := get(t, s, "/static/hello.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bonjour", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, testPostings, nil)
	get(t, s, "/about")
	get(t, s, "/carrieres/job/99")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",route="/about",status="200"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/carrieres/job/:id",status="404"} 1`)
	assert.Contains(t, body, "catalog_job_postings 3")

	disabled := newTestServer(t, testPostings, func(cfg *config.MainConfig) { cfg.Metrics.Enabled = false })
	assert.Equal(t, http.StatusNotFound, get(t, disabled, "/metrics").Code)
}

func TestBotDetection(t *testing.T) {
	s := newTestServer(t, testPostings, func(cfg *config.MainConfig) {
		cfg.Web.BlockedUserAgents = []string{"SemrushBot"}
	})
	assert.Equal(t, http.StatusForbidden, get(t, s, "/about", "User-Agent", "Mozilla/5.0 (compatible; SemrushBot/7)").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/about", "User-Agent", "Mozilla/5.0 Firefox/130.0").Code)
}

func TestTemplatesDir(t *testing.T) {
	_, err := NewServer(&config.MainConfig{Web: config.WebConfig{TemplatesDir: t.TempDir()}}, mustTable(t))
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.html"), []byte(`{{ template "content" . }}`), 0o644))
	_, err = NewServer(&config.MainConfig{Web: config.WebConfig{TemplatesDir: dir}}, mustTable(t))
	assert.Error(t, err, "page templates are missing")
}

func mustTable(t *testing.T) *site.Table {
	t.Helper()
	table, err := site.NewTable(site.DefaultPages(), nil)
	require.NoError(t, err)
	return table
}

func TestEmbeddedFiles(t *testing.T) {
	files, err := ListEmbeddedFiles()
	require.NoError(t, err)
	assert.Contains(t, files, "templates/base.html")
	assert.Contains(t, files, "static/robots.txt")
	for _, name := range mustTable(t).Templates() {
		assert.Contains(t, files, "templates/"+name+".html")
	}
}

func TestGetContentType(t *testing.T) {
	assert.Equal(t, "application/javascript", getContentType("static/js/animation.js"))
	assert.Equal(t, "image/jpeg", getContentType("a.JPEG"))
	assert.Equal(t, "font/woff2", getContentType("f.woff2"))
	assert.Equal(t, "application/octet-stream", getContentType("noext"))
}

func TestServeAndShutdown(t *testing.T) {
	s := newTestServer(t, testPostings, func(cfg *config.MainConfig) { cfg.Web.ShutdownTimeout = time.Second })
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
