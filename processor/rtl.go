package processor

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/rtlify"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RTLOptions names the markup the adjuster enforces.
type RTLOptions struct {
	Lang              string // Target language code for <html lang>
	BodyClass         string // Marker class added to <body>
	Stylesheet        string // href of the RTL stylesheet
	PrimaryStylesheet string // href the RTL stylesheet is inserted after
	Script            string // src of the RTL behavior script
	PrimaryScript     string // src the RTL script is inserted after
}

// DefaultRTLOptions returns the Persian defaults.
func DefaultRTLOptions() RTLOptions {
	return RTLOptions{
		Lang:              "fa",
		BodyClass:         "rtl-body",
		Stylesheet:        "css/rtl.css",
		PrimaryStylesheet: "css/style.css",
		Script:            "js/rtl.js",
		PrimaryScript:     "js/main.js",
	}
}

// RTLAdjuster switches a document to right-to-left rendering. Every step is
// idempotent, so adjusting an already adjusted document changes nothing.
type RTLAdjuster struct {
	opts RTLOptions
}

// NewRTLAdjuster creates an adjuster. Empty fields fall back to the defaults.
func NewRTLAdjuster(opts RTLOptions) *RTLAdjuster {
	def := DefaultRTLOptions()
	if opts.Lang == "" {
		opts.Lang = def.Lang
	}
	if opts.BodyClass == "" {
		opts.BodyClass = def.BodyClass
	}
	if opts.Stylesheet == "" {
		opts.Stylesheet = def.Stylesheet
	}
	if opts.PrimaryStylesheet == "" {
		opts.PrimaryStylesheet = def.PrimaryStylesheet
	}
	if opts.Script == "" {
		opts.Script = def.Script
	}
	if opts.PrimaryScript == "" {
		opts.PrimaryScript = def.PrimaryScript
	}
	return &RTLAdjuster{opts: opts}
}

// Options returns the effective options.
func (a *RTLAdjuster) Options() RTLOptions {
	return a.opts
}

// Adjust applies every RTL adjustment to doc.
func (a *RTLAdjuster) Adjust(doc *goquery.Document) {
	a.SetDocumentAttributes(doc)
	a.SetBodyAttributes(doc)
	a.EnsureStylesheet(doc)
	a.EnsureScript(doc)
}

// SetDocumentAttributes sets lang and dir on the root element.
func (a *RTLAdjuster) SetDocumentAttributes(doc *goquery.Document) {
	root := doc.Find("html").First()
	if root.Length() == 0 {
		return
	}
	root.SetAttr("lang", rtlify.ToHTMLLang(a.opts.Lang))
	root.SetAttr("dir", "rtl")
}

// SetBodyAttributes sets dir on body and appends the marker class when absent,
// keeping the existing classes in order.
func (a *RTLAdjuster) SetBodyAttributes(doc *goquery.Document) {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return
	}
	body.SetAttr("dir", "rtl")

	class, _ := body.Attr("class")
	classes := strings.Fields(class)
	if !slices.Contains(classes, a.opts.BodyClass) {
		classes = append(classes, a.opts.BodyClass)
	}
	body.SetAttr("class", strings.Join(classes, " "))
}

// EnsureStylesheet links the RTL stylesheet in head, right after the primary
// stylesheet when there is one.
func (a *RTLAdjuster) EnsureStylesheet(doc *goquery.Document) {
	head := doc.Find("head").First()
	if head.Length() == 0 {
		return
	}
	if head.Find("link").FilterFunction(hasAttrValue("href", a.opts.Stylesheet)).Length() > 0 {
		return
	}

	link := newElement(atom.Link, "rel", "stylesheet", "href", a.opts.Stylesheet)

	primary := head.Find("link").FilterFunction(hasAttrValue("href", a.opts.PrimaryStylesheet)).First()
	if primary.Length() > 0 {
		primary.AfterNodes(link)
		return
	}
	head.AppendNodes(link)
}

// EnsureScript references the RTL script in body, right after the primary
// application script when there is one. Detection is by exact src.
func (a *RTLAdjuster) EnsureScript(doc *goquery.Document) {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return
	}
	scripts := body.Find("script[src]")
	if scripts.FilterFunction(hasAttrValue("src", a.opts.Script)).Length() > 0 {
		return
	}

	script := newElement(atom.Script, "src", a.opts.Script)

	primary := scripts.FilterFunction(hasAttrValue("src", a.opts.PrimaryScript)).First()
	if primary.Length() > 0 {
		primary.AfterNodes(script)
		return
	}
	body.AppendNodes(script)
}

// hasAttrValue matches elements whose attribute equals val exactly. Used
// instead of a selector string so paths never need escaping.
func hasAttrValue(key, val string) func(int, *goquery.Selection) bool {
	return func(_ int, s *goquery.Selection) bool {
		got, ok := s.Attr(key)
		return ok && got == val
	}
}

// newElement builds a detached element; kv holds attribute key/value pairs.
func newElement(a atom.Atom, kv ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}
