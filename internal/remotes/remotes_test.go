package remotes

import "testing"

// newTestStore creates an in-memory metadata store with schema.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}
	return st
}

func TestListRemoteRefs_UnknownRemote(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.ListRemoteRefs("flathub"); err == nil {
		t.Error("ListRemoteRefs should fail for an unconfigured remote")
	}
}

func TestListRemoteRefs_EmptyRemote(t *testing.T) {
	st := newTestStore(t)
	if err := st.AddRemote("flathub", "https://dl.flathub.org/repo/"); err != nil {
		t.Fatalf("AddRemote failed: %v", err)
	}

	refs, err := st.ListRemoteRefs("flathub")
	if err != nil {
		t.Fatalf("ListRemoteRefs failed: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("got %d refs for empty remote, want 0", len(refs))
	}
}

func TestListRemoteRefs(t *testing.T) {
	st := newTestStore(t)
	if err := st.AddRemote("flathub", "https://dl.flathub.org/repo/"); err != nil {
		t.Fatalf("AddRemote failed: %v", err)
	}

	in := RemoteRef{
		Ref:           "app/org.foo.Bar/x86_64/stable",
		Checksum:      "0123456789abcdef",
		InstalledSize: 4096,
		DownloadSize:  1024,
	}
	if err := st.AddRemoteRef("flathub", in); err != nil {
		t.Fatalf("AddRemoteRef failed: %v", err)
	}

	refs, err := st.ListRemoteRefs("flathub")
	if err != nil {
		t.Fatalf("ListRemoteRefs failed: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1", len(refs))
	}
	if refs[0] != in {
		t.Errorf("ref = %+v, want %+v", refs[0], in)
	}
}

func TestActiveCommit(t *testing.T) {
	st := newTestStore(t)

	if _, ok, err := st.ActiveCommit("app/org.foo.Bar/x86_64/stable"); err != nil || ok {
		t.Errorf("ActiveCommit on undeployed ref = (ok=%v, err=%v), want not deployed", ok, err)
	}

	if err := st.SetDeployment("app/org.foo.Bar/x86_64/stable", "cafebabe"); err != nil {
		t.Fatalf("SetDeployment failed: %v", err)
	}

	commit, ok, err := st.ActiveCommit("app/org.foo.Bar/x86_64/stable")
	if err != nil {
		t.Fatalf("ActiveCommit failed: %v", err)
	}
	if !ok || commit != "cafebabe" {
		t.Errorf("ActiveCommit = (%q, %v), want (\"cafebabe\", true)", commit, ok)
	}
}
