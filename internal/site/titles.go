package site

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// named tags whose title is not the tag itself
var tagTitles = map[string]string{
	"index":         "Accueil",
	CurrentJobList:  "Offres d'emploi",
	CurrentCareers:  "Carrières",
	"job_not_found": "Offre introuvable",
}

// PageTitle returns the display title of a page
func PageTitle(p Page) string {
	if p.Title != "" {
		return p.Title
	}
	return TagTitle(p.Current)
}

// TagTitle turns a navigation tag into a display title ("pages_team" -> "Pages Team")
func TagTitle(tag string) string {
	if t, ok := tagTitles[tag]; ok {
		return t
	}
	// a Caser is stateful, do not share it between requests
	return cases.Title(language.French).String(strings.ReplaceAll(tag, "_", " "))
}
