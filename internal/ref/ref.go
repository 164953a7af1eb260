// Package ref parses flatpak ref strings of the form kind/name/arch/branch,
// e.g. "app/org.gnome.Maps/x86_64/stable".
package ref

import (
	"fmt"
	"strings"
)

// Kind distinguishes applications from runtimes.
type Kind string

const (
	KindApp     Kind = "app"
	KindRuntime Kind = "runtime"
)

// Ref is a decomposed ref string.
type Ref struct {
	Kind   Kind
	Name   string
	Arch   string
	Branch string
}

// Decompose splits a ref string into its four components. It fails for
// anything that is not exactly kind/name/arch/branch with a known kind and
// no empty component. Callers that render ref-derived fields treat a
// failure as "no data", not as a fatal condition.
func Decompose(s string) (*Ref, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid ref %q: expected kind/name/arch/branch", s)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid ref %q: empty component", s)
		}
	}

	kind := Kind(parts[0])
	if kind != KindApp && kind != KindRuntime {
		return nil, fmt.Errorf("invalid ref %q: unknown kind %q", s, parts[0])
	}

	return &Ref{
		Kind:   kind,
		Name:   parts[1],
		Arch:   parts[2],
		Branch: parts[3],
	}, nil
}

// String reassembles the ref into its canonical form.
func (r *Ref) String() string {
	return string(r.Kind) + "/" + r.Name + "/" + r.Arch + "/" + r.Branch
}
