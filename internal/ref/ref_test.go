package ref

import "testing"

func TestDecompose_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Ref
	}{
		{
			name: "app ref",
			in:   "app/org.foo.Bar/x86_64/stable",
			want: Ref{Kind: KindApp, Name: "org.foo.Bar", Arch: "x86_64", Branch: "stable"},
		},
		{
			name: "runtime ref",
			in:   "runtime/org.gnome.Platform/aarch64/45",
			want: Ref{Kind: KindRuntime, Name: "org.gnome.Platform", Arch: "aarch64", Branch: "45"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompose(tt.in)
			if err != nil {
				t.Fatalf("Decompose(%q) failed: %v", tt.in, err)
			}
			if *got != tt.want {
				t.Errorf("Decompose(%q) = %+v, want %+v", tt.in, *got, tt.want)
			}
		})
	}
}

func TestDecompose_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no separators", "org.foo.Bar"},
		{"too few components", "app/org.foo.Bar/x86_64"},
		{"too many components", "app/org.foo.Bar/x86_64/stable/extra"},
		{"unknown kind", "extension/org.foo.Bar/x86_64/stable"},
		{"empty name", "app//x86_64/stable"},
		{"empty branch", "app/org.foo.Bar/x86_64/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decompose(tt.in); err == nil {
				t.Errorf("Decompose(%q) should have failed", tt.in)
			}
		})
	}
}

func TestRef_String_RoundTrip(t *testing.T) {
	in := "app/org.foo.Bar/x86_64/stable"
	r, err := Decompose(in)
	if err != nil {
		t.Fatalf("Decompose(%q) failed: %v", in, err)
	}
	if got := r.String(); got != in {
		t.Errorf("String() = %q, want %q", got, in)
	}
}
