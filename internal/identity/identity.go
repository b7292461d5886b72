// Package identity defines the canonical person identifier used by the
// ledger and the directory capability it is resolved through.
//
// Identifiers arrive in several spellings for the same person, for example
// "Jane.Doe@example.com", "jane doe" and "jane.doe". Canonicalization happens
// once at this boundary so that all stored rows compare with plain equality.
package identity

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// PersonID is the canonical identifier for a person.
type PersonID string

var ErrInvalidIdentity = errors.New("no person identifier could be resolved from the input")

var separators = regexp.MustCompile(`[\s._]+`)

var folder = cases.Fold()

// Canonicalize normalizes a raw identifier into its canonical dotted form.
//
// The input is unicode-normalized and case-folded, a mail style domain
// suffix is stripped and all separator runs collapse into single dots.
func Canonicalize(raw string) (PersonID, error) {
	s := folder.String(norm.NFKC.String(strings.TrimSpace(raw)))

	// Strip a mail-style domain
	if i := strings.Index(s, "@"); i >= 0 {
		s = s[:i]
	}

	s = separators.ReplaceAllString(s, ".")
	s = strings.Trim(s, ".")

	if s == "" {
		return "", ErrInvalidIdentity
	}

	return PersonID(s), nil
}

// MustCanonicalize is Canonicalize for statically known identifiers, e.g. in tests.
// It panics on input that does not resolve.
func MustCanonicalize(raw string) PersonID {
	id, err := Canonicalize(raw)
	if err != nil {
		panic(err)
	}

	return id
}

func (p PersonID) String() string {
	return string(p)
}

// Variants returns the textual spellings under which the person may appear
// in legacy data: the canonical dotted form, the space-separated form and
// the first name segment. Matching against stored rows always uses the
// canonical form, variants exist for alias rules and display only.
func (p PersonID) Variants() []string {
	variants := []string{string(p)}

	if strings.Contains(string(p), ".") {
		variants = append(variants, strings.ReplaceAll(string(p), ".", " "))
		variants = append(variants, strings.SplitN(string(p), ".", 2)[0])
	}

	return variants
}

// Directory is the capability the surrounding application provides for
// identity resolution. The engine never talks to a directory server itself.
type Directory interface {
	// ResolveCanonicalIdentifier resolves any raw spelling to the canonical person.
	ResolveCanonicalIdentifier(raw string) (PersonID, error)

	// ListDirectReports returns the direct reports of a person.
	ListDirectReports(person PersonID) ([]PersonID, error)
}
