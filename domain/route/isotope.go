package route

import (
	"regexp"
	"strconv"
	"strings"

	"isoplan/domain/core"
)

var (
	elementPattern = regexp.MustCompile(`^[A-Z][a-z]?`)
	isotopePattern = regexp.MustCompile(`^([A-Z][a-z]?)-(\d{1,3})(m\d?)?$`)
	impurityHead   = regexp.MustCompile(`^([A-Z][a-z]?-\d{1,3}(?:m\d?)?)\b`)
	pathPattern    = regexp.MustCompile(`^([A-Z][a-z]?-\d{1,3}(?:m\d?)?)\s*\(([^)]+)\)`)
)

// ElementSymbol extracts the element prefix of an isotope label ("Lu-177m" -> "Lu").
func ElementSymbol(isotope string) (string, bool) {
	sym := elementPattern.FindString(strings.TrimSpace(isotope))
	return sym, sym != ""
}

// MassNumber extracts A from a label of the form "Sym-A[m]".
func MassNumber(isotope string) (int, bool) {
	m := isotopePattern.FindStringSubmatch(strings.TrimSpace(isotope))
	if m == nil {
		return 0, false
	}
	a, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return a, true
}

// IsIsotopeLabel reports whether s is a well-formed "Sym-A[m]" label.
func IsIsotopeLabel(s string) bool {
	return isotopePattern.MatchString(strings.TrimSpace(s))
}

// SameElement reports whether two isotope labels share an element symbol.
func SameElement(a, b string) bool {
	ea, okA := ElementSymbol(a)
	eb, okB := ElementSymbol(b)
	return okA && okB && ea == eb
}

// ImpurityRisk is one known contamination pathway of a route.
type ImpurityRisk struct {
	Isotope string `json:"isotope" yaml:"isotope" validate:"required"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ProductionPath is the parsed form of an impurity path such as "Zn-64(n,p)".
type ProductionPath struct {
	Parent   string
	Reaction ReactionKind
}

// ParseImpurityDescriptor parses "Cu-64 from Zn-64(n,p)" style text. The path
// part is optional.
func ParseImpurityDescriptor(text string) (ImpurityRisk, error) {
	text = strings.TrimSpace(text)
	head := impurityHead.FindString(text)
	if head == "" {
		return ImpurityRisk{}, core.NewInputError("impurity", "cannot parse isotope from "+strconv.Quote(text))
	}
	rest := strings.TrimSpace(strings.TrimPrefix(text, head))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "from"))
	return ImpurityRisk{Isotope: head, Path: rest}, nil
}

// ImpurityFromText is the lenient form of ParseImpurityDescriptor used by
// registry loaders. Unparseable text is kept verbatim as the isotope so the
// evaluator can report it.
func ImpurityFromText(text string) ImpurityRisk {
	r, err := ParseImpurityDescriptor(text)
	if err != nil {
		return ImpurityRisk{Isotope: strings.TrimSpace(text)}
	}
	return r
}

// ParsePath decodes the production path of the impurity.
func (r ImpurityRisk) ParsePath() (ProductionPath, error) {
	m := pathPattern.FindStringSubmatch(strings.TrimSpace(r.Path))
	if m == nil {
		return ProductionPath{}, core.NewInputError("impurity.path", "cannot parse production path "+strconv.Quote(r.Path))
	}
	kind, err := NormalizeReaction(m[2])
	if err != nil {
		return ProductionPath{}, err
	}
	return ProductionPath{Parent: m[1], Reaction: kind}, nil
}

// Key is the lookup key used for tabulated impurity cross-sections,
// e.g. "Zn-64(n,p)Cu-64".
func (p ProductionPath) Key(product string) string {
	return p.Parent + "(" + string(p.Reaction) + ")" + product
}

func (r ImpurityRisk) String() string {
	if r.Path == "" {
		return r.Isotope
	}
	return r.Isotope + " from " + r.Path
}

