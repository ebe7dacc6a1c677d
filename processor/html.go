package processor

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/rtlify"
	"github.com/yosssi/gohtml"
	"golang.org/x/net/html"
)

const contentTypeHTML = "html"

// HTMLProcessor extracts translatable units from HTML documents and writes
// translations back into them.
type HTMLProcessor struct {
	ignoredParents map[string]bool
	attrs          []string
	pretty         bool
}

// HTMLProcessorOption configures the HTML processor.
type HTMLProcessorOption func(*HTMLProcessor)

// WithIgnoredParents replaces the set of elements whose direct text children
// are skipped.
func WithIgnoredParents(tags ...string) HTMLProcessorOption {
	return func(p *HTMLProcessor) {
		ignored := make(map[string]bool, len(tags))
		for _, tag := range tags {
			ignored[strings.ToLower(tag)] = true
		}
		p.ignoredParents = ignored
	}
}

// WithAttributes replaces the list of translated attributes. Order matters:
// attribute units are extracted attribute by attribute.
func WithAttributes(attrs ...string) HTMLProcessorOption {
	return func(p *HTMLProcessor) {
		p.attrs = append([]string(nil), attrs...)
	}
}

// WithPrettyPrint enables or disables indented output in Render.
func WithPrettyPrint(enabled bool) HTMLProcessorOption {
	return func(p *HTMLProcessor) {
		p.pretty = enabled
	}
}

// NewHTMLProcessor creates a new HTML processor that skips text inside
// script and style, translates the default attribute set and pretty-prints.
func NewHTMLProcessor(opts ...HTMLProcessorOption) *HTMLProcessor {
	p := &HTMLProcessor{
		ignoredParents: rtlify.ExcludedTextParents,
		attrs:          rtlify.TranslatableAttrs,
		pretty:         true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored parents.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	return NewHTMLProcessor(WithIgnoredParents(tags...))
}

// Parse reads a complete HTML document. Scripting is disabled so the content
// of noscript is parsed as markup rather than raw text.
func (p *HTMLProcessor) Parse(r io.Reader) (*goquery.Document, error) {
	root, err := html.ParseWithOptions(r, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, &rtlify.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: contentTypeHTML,
		}
	}
	return goquery.NewDocumentFromNode(root), nil
}

// ParseString is Parse for in-memory content.
func (p *HTMLProcessor) ParseString(content string) (*goquery.Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Extract returns the translatable units of doc: text nodes in document
// order, then attribute values attribute by attribute, each in document order.
func (p *HTMLProcessor) Extract(doc *goquery.Document) []rtlify.Unit {
	var units []rtlify.Unit

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && !p.ignoredParent(n) {
			if u, ok := rtlify.NewUnit(rtlify.UnitText, n, "", n.Data); ok {
				units = append(units, u)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Nodes {
		walk(n)
	}

	for _, attr := range p.attrs {
		doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			n := s.Get(0)
			// The selector also matches namespaced attributes such as xlink:title
			val, ok := plainAttr(n, attr)
			if !ok {
				return
			}
			if u, ok := rtlify.NewUnit(rtlify.UnitAttribute, n, attr, val); ok {
				units = append(units, u)
			}
		})
	}

	return units
}

// Apply writes translations back to each unit's location and returns the
// number of units written. translations maps unit content to its translated
// core. A unit without a translation aborts with an error so a document is
// never left half translated.
func (p *HTMLProcessor) Apply(units []rtlify.Unit, translations map[string]string) (int, error) {
	for _, u := range units {
		if _, ok := translations[u.Content]; !ok {
			return 0, &rtlify.ProcessorError{
				Message:     "missing translation for " + quote(u.Content),
				ContentType: contentTypeHTML,
			}
		}
		if u.Node == nil {
			return 0, &rtlify.ProcessorError{
				Message:     "unit has no node",
				ContentType: contentTypeHTML,
			}
		}
	}

	for _, u := range units {
		value := u.Value(translations[u.Content])
		switch u.Kind {
		case rtlify.UnitText:
			u.Node.Data = value
		case rtlify.UnitAttribute:
			setAttr(u.Node, u.Attr, value)
		}
	}

	return len(units), nil
}

// Render serializes doc, indented when pretty printing is enabled.
func (p *HTMLProcessor) Render(doc *goquery.Document) (string, error) {
	out, err := doc.Html()
	if err != nil {
		return "", &rtlify.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: contentTypeHTML,
		}
	}

	if p.pretty {
		out = gohtml.Format(out)
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
	}

	return out, nil
}

func (p *HTMLProcessor) ignoredParent(n *html.Node) bool {
	parent := n.Parent
	return parent != nil && parent.Type == html.ElementNode && p.ignoredParents[strings.ToLower(parent.Data)]
}

// plainAttr returns the value of the un-namespaced attribute key.
func plainAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// setAttr sets key on n, adding the attribute when it is missing.
func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func quote(s string) string {
	if r := []rune(s); len(r) > 40 {
		s = string(r[:37]) + "..."
	}
	return `"` + s + `"`
}
