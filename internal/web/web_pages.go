package web

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-vitrine/internal/config"
	"github.com/go-while/go-vitrine/internal/models"
	"github.com/go-while/go-vitrine/internal/site"
)

// pageHandler serves every route of the table: the matched pattern and its
// params go through Table.Resolve, the resolution is rendered as-is
func (s *WebServer) pageHandler(c *gin.Context) {
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}
	res, ok := s.Table.Resolve(c.FullPath(), params)
	if !ok {
		s.renderError(c, http.StatusNotFound, "Page introuvable", "route "+c.FullPath()+" is not in the table")
		return
	}
	s.render(c, res)
}

// getBaseTemplateData merges the common template variables with the resolution context
func (s *WebServer) getBaseTemplateData(c *gin.Context, extra site.Context) site.Context {
	current, _ := extra["current"].(string)
	title := s.Table.TitleFor(current)
	if job, ok := extra["job"].(*models.JobPosting); ok && job.Title() != "" {
		title = job.Title()
	}

	data := site.Context{
		"request":     newRequestInfo(c),
		"current":     current,
		"nav":         s.Table.Nav(current),
		"title":       title,
		"app_version": config.AppVersion,
		"year":        time.Now().Year(),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// render executes the resolution into a buffer so a template error can still become a 500
func (s *WebServer) render(c *gin.Context, res site.Resolution) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, res.Template, s.getBaseTemplateData(c, res.Context)); err != nil {
		s.renderError(c, http.StatusInternalServerError, "Template error", err.Error())
		return
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// renderError renders an error page
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	log.Printf("[WEB]: Error %d on %s: %s - %s", statusCode, c.Request.URL.Path, message, errstring)

	data := s.getBaseTemplateData(c, site.Context{
		"current":     errorTemplate,
		"error":       message,
		"status_code": statusCode,
	})
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, errorTemplate, data); err != nil {
		log.Printf("[WEB]: Error rendering error template: %v", err)
		c.String(statusCode, "Error: %s", message)
		return
	}
	c.Data(statusCode, "text/html; charset=utf-8", buf.Bytes())
}
