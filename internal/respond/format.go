package respond

import (
	"fmt"
	"strings"

	"github.com/hyperjump/manabu/internal/models"
	"github.com/hyperjump/manabu/internal/tokenize"
)

// htmlSkeleton is the fixed answer for the HTML document structure question.
const htmlSkeleton = `A minimal HTML document looks like this:

<!DOCTYPE html>
<html>
  <head>
    <title>Page title</title>
  </head>
  <body>
    <h1>Heading</h1>
    <p>Content goes here.</p>
  </body>
</html>

The doctype declares the HTML version, head holds metadata, and body holds everything the page displays.`

// Format renders a retrieved fact as answer text. HTML facts get a tag
// sentence, geography and politics facts get a "term: content" line, and
// everything else is the cleaned content itself. Markup is stripped in every
// branch so scraped fragments never leak tags into answers.
func Format(fact *models.Fact) string {
	content := tokenize.CollapseWhitespace(tokenize.StripHTML(fact.Content))

	switch fact.Category {
	case models.CategoryHTML:
		return formatHTML(fact.Term, content)
	case models.CategoryGeography, models.CategoryPolitics:
		if fact.Term != "" {
			return fmt.Sprintf("%s: %s", fact.Term, content)
		}
		return content
	default:
		return content
	}
}

// formatHTML frames the content as a tag description unless the content
// already names the term, which scraped reference text usually does.
func formatHTML(term, content string) string {
	if term == "" {
		return content
	}
	if strings.Contains(strings.ToLower(content), strings.ToLower(term)) {
		return content
	}
	return fmt.Sprintf("The %s tag is %s", term, content)
}
