// Package site holds the route table of the corporate site: which template
// and which context each path renders.
package site

// Page is one fixed-path entry of the route table
type Page struct {
	Name     string // route name for url_for, unique
	Path     string
	Template string // template identifier, without extension
	Current  string // navigation tag
	Title    string // optional, derived from Current when empty
	InNav    bool   // listed in the navigation bar
}

// Route names of the careers catalog routes
const (
	RouteJobList   = "job_list"
	RouteJobDetail = "job_detail"

	JobListPath   = "/carrieres/offres"
	JobDetailPath = "/carrieres/job/:id"

	TemplateJobList     = "jobs"
	TemplateJobDetail   = "job"
	TemplateJobNotFound = "job_not_found"

	CurrentJobList = "offres"
	CurrentCareers = "carrieres"
)

// DefaultPages returns the fixed pages of the site, in navigation order
func DefaultPages() []Page {
	return []Page{
		{Name: "index", Path: "/", Template: "index", Current: "index", InNav: true},
		{Name: "about", Path: "/about", Template: "about", Current: "about", InNav: true},
		{Name: "service", Path: "/service", Template: "service", Current: "service", InNav: true},
		{Name: "blog", Path: "/blog", Template: "blog", Current: "blog", InNav: true},
		{Name: "detail", Path: "/detail", Template: "detail", Current: "detail"},
		{Name: "contact", Path: "/contact", Template: "contact", Current: "contact", InNav: true},
		{Name: "price", Path: "/pages/price", Template: "price", Current: "price"},
		{Name: "feature", Path: "/pages/feature", Template: "feature", Current: "feature"},
		{Name: "team", Path: "/pages/team", Template: "team", Current: "team"},
		{Name: "testimonial", Path: "/pages/testimonial", Template: "testimonial", Current: "testimonial"},
		{Name: "quote", Path: "/pages/quote", Template: "quote", Current: "quote"},
		{Name: "carrieres", Path: "/carrieres", Template: "carrieres", Current: "carrieres", Title: "Carrières", InNav: true},
		{Name: "carrieres_culture", Path: "/carrieres/culture", Template: "carrieres_culture", Current: "carrieres_culture", Title: "Notre culture"},
		{Name: "carrieres_avantages", Path: "/carrieres/avantages", Template: "carrieres_avantages", Current: "carrieres_avantages", Title: "Avantages"},
		{Name: "carrieres_processus", Path: "/carrieres/processus", Template: "carrieres_processus", Current: "carrieres_processus", Title: "Processus de recrutement"},
		// first revision of the site served the about page here
		{Name: "info1", Path: "/info1", Template: "about", Current: "about"},
	}
}
