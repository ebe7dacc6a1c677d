package rtlify

import "golang.org/x/net/html"

// UnitKind tells where a translatable unit lives in the document.
type UnitKind int

const (
	// UnitText is the content of a text node.
	UnitText UnitKind = iota
	// UnitAttribute is the value of an element attribute.
	UnitAttribute
)

func (k UnitKind) String() string {
	switch k {
	case UnitText:
		return "text"
	case UnitAttribute:
		return "attr"
	default:
		return "unknown"
	}
}

// Unit represents one translatable piece of a parsed document.
//
// Node is the text node itself for UnitText and the owning element for
// UnitAttribute. Units hold node pointers rather than indexes, so a unit stays
// correctly targeted while earlier units of the same document are rewritten.
type Unit struct {
	Kind     UnitKind
	Node     *html.Node
	Attr     string // Attribute name (UnitAttribute only)
	Leading  string // Whitespace before Content, never translated
	Content  string // Stripped, non-empty text sent for translation
	Trailing string // Whitespace after Content, never translated
}

// Value rebuilds the full string for a translated core.
func (u Unit) Value(translated string) string {
	return u.Leading + translated + u.Trailing
}

// NewUnit splits raw with SplitWhitespace and returns a unit for it.
// ok is false when raw has no translatable content.
func NewUnit(kind UnitKind, node *html.Node, attr, raw string) (Unit, bool) {
	leading, core, trailing := SplitWhitespace(raw)
	if core == "" {
		return Unit{}, false
	}
	return Unit{
		Kind:     kind,
		Node:     node,
		Attr:     attr,
		Leading:  leading,
		Content:  core,
		Trailing: trailing,
	}, true
}

// TranslatableAttrs lists the attributes whose values are translated, in
// extraction order.
var TranslatableAttrs = []string{"placeholder", "title", "alt", "aria-label", "value"}

// ExcludedTextParents contains elements whose direct text children are never
// translated.
var ExcludedTextParents = map[string]bool{
	"script": true,
	"style":  true,
}

// TranslationStats counts how the distinct contents of a batch were resolved.
type TranslationStats struct {
	Distinct   int // Distinct content strings in the batch
	Translated int // Resolved through the provider
	Cached     int // Resolved from the cache
}
