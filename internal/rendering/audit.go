package rendering

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkFinding is an anchor in rendered output whose target is not allowed
type LinkFinding struct {
	Href string
	Text string
}

func (f LinkFinding) String() string {
	return fmt.Sprintf("%q (%s)", f.Href, f.Text)
}

// AuditLinks lists anchors in html whose href is neither relative nor passes
// SafeLink. Templates that guard contact links on the checked context values
// produce no findings.
func AuditLinks(html string) ([]LinkFinding, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &RenderError{Message: "failed to parse rendered HTML", Cause: err}
	}

	var findings []LinkFinding
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if isRelative(href) || SafeLink(href) != "" {
			return
		}
		findings = append(findings, LinkFinding{
			Href: href,
			Text: strings.TrimSpace(a.Text()),
		})
	})
	return findings, nil
}
