package analyzer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page holds one fetched page in the forms the analyzers need: the raw HTML,
// a lowercased copy for substring signatures, the parsed document, and the
// script/link URLs extracted from it. Building it once up front keeps every
// analyzer a pure function over the same immutable input.
type Page struct {
	URL       string
	HTML      string
	LowerHTML string

	doc        *goquery.Document
	scriptSrcs []string
	linkHrefs  []string
}

// NewPage parses raw HTML into a Page. Parsing is lenient: goquery (via
// x/net/html) never fails on malformed markup short of a reader error.
func NewPage(pageURL, rawHTML string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	p := &Page{
		URL:       pageURL,
		HTML:      rawHTML,
		LowerHTML: strings.ToLower(rawHTML),
		doc:       doc,
	}

	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && src != "" {
			p.scriptSrcs = append(p.scriptSrcs, strings.ToLower(src))
		}
	})
	doc.Find("link[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			p.linkHrefs = append(p.linkHrefs, strings.ToLower(href))
		}
	})

	return p, nil
}

// Doc exposes the parsed document for selector-based analyzers.
func (p *Page) Doc() *goquery.Document { return p.doc }

// ScriptSrcs returns the lowercased script src URLs found on the page.
func (p *Page) ScriptSrcs() []string { return p.scriptSrcs }

// LinkHrefs returns the lowercased link hrefs found on the page.
func (p *Page) LinkHrefs() []string { return p.linkHrefs }

func (p *Page) anyScriptSrcContains(needle string) bool {
	for _, src := range p.scriptSrcs {
		if strings.Contains(src, needle) {
			return true
		}
	}
	return false
}

func (p *Page) anyLinkHrefContains(needle string) bool {
	for _, href := range p.linkHrefs {
		if strings.Contains(href, needle) {
			return true
		}
	}
	return false
}
