package history

import "testing"

func TestColumns_UniqueKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Columns {
		if seen[c.Key] {
			t.Errorf("duplicate column key %q in registry", c.Key)
		}
		seen[c.Key] = true
	}
}

func TestColumns_EveryKeyHasProjection(t *testing.T) {
	for _, c := range Columns {
		if _, ok := projections[c.Key]; !ok {
			t.Errorf("column %q has no projection", c.Key)
		}
	}
}

func TestResolve_Defaults(t *testing.T) {
	cols, err := Resolve(nil, false)
	if err != nil {
		t.Fatalf("Resolve(nil) failed: %v", err)
	}

	want := []string{"time", "change", "application", "branch", "installation", "remote", "commit", "result"}
	if len(cols) != len(want) {
		t.Fatalf("Resolve(nil) returned %d columns, want %d", len(cols), len(want))
	}
	for i, key := range want {
		if cols[i].Key != key {
			t.Errorf("default column %d = %q, want %q", i, cols[i].Key, key)
		}
	}
}

func TestResolve_AllIncludesWideColumns(t *testing.T) {
	cols, err := Resolve(nil, true)
	if err != nil {
		t.Fatalf("Resolve(nil, all) failed: %v", err)
	}
	if len(cols) != len(Columns) {
		t.Errorf("Resolve(nil, all) returned %d columns, want %d", len(cols), len(Columns))
	}
}

func TestResolve_ExplicitRequestKeepsOrder(t *testing.T) {
	cols, err := Resolve([]string{"result", "time"}, false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(cols) != 2 || cols[0].Key != "result" || cols[1].Key != "time" {
		t.Errorf("Resolve([result time]) = %v, want request order preserved", keysOf(cols))
	}
}

func TestResolve_DuplicatesPreserved(t *testing.T) {
	cols, err := Resolve([]string{"time", "time"}, false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(cols) != 2 {
		t.Errorf("Resolve([time time]) returned %d columns, want 2", len(cols))
	}
}

func TestResolve_UnknownColumn(t *testing.T) {
	_, err := Resolve([]string{"time", "bogus"}, false)
	if err == nil {
		t.Fatal("Resolve with unknown column should have failed")
	}
	if got := err.Error(); !contains(got, "bogus") {
		t.Errorf("error %q should name the unknown column", got)
	}
}

func TestResolve_CaseSensitive(t *testing.T) {
	if _, err := Resolve([]string{"Time"}, false); err == nil {
		t.Error("Resolve should look keys up case-sensitively")
	}
}

func keysOf(cols []Column) []string {
	keys := make([]string, 0, len(cols))
	for _, c := range cols {
		keys = append(keys, c.Key)
	}
	return keys
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
