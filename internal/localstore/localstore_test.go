package localstore

import (
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	file, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	bdg, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	mem, err := NewBadgerInMemory()
	if err != nil {
		t.Fatalf("NewBadgerInMemory: %v", err)
	}

	all := map[string]Backend{
		"memory":          NewMemory(),
		"file":            file,
		"badger":          bdg,
		"badger-inmemory": mem,
	}
	t.Cleanup(func() {
		for _, b := range all {
			b.Close()
		}
	})
	return all
}

func TestBackendContract(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := b.Read("city-hub:profile")
			if err != nil || got != nil {
				t.Fatalf("absent key: got %q, %v; want nil, nil", got, err)
			}

			if err := b.Write("city-hub:profile", []byte(`{"version":1}`)); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err = b.Read("city-hub:profile")
			if err != nil || string(got) != `{"version":1}` {
				t.Fatalf("Read after write: %q, %v", got, err)
			}

			if err := b.Write("city-hub:profile", []byte(`{"version":2}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _ = b.Read("city-hub:profile")
			if string(got) != `{"version":2}` {
				t.Errorf("overwrite not visible: %q", got)
			}

			if err := b.Delete("city-hub:profile"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if got, _ := b.Read("city-hub:profile"); got != nil {
				t.Errorf("expected nil after delete, got %q", got)
			}
			if err := b.Delete("never-written"); err != nil {
				t.Errorf("deleting absent key: %v", err)
			}
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Write("k", buf)
	buf[0] = 'x'

	got, _ := m.Read("k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
}

func TestFileKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	_ = f.Write("user/1", []byte("first"))
	_ = f.Write("user/1", []byte("second"))

	path := f.Path("user/1")
	if filepath.Dir(path) != dir {
		t.Errorf("key escaped the store directory: %s", path)
	}
	bak, err := os.ReadFile(path + ".bak")
	if err != nil || string(bak) != "first" {
		t.Errorf("backup = %q, %v; want first", bak, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestFileKeysDoNotCollide(t *testing.T) {
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	keys := []string{"city-hub:profile", "city-hub_profile", "city-hub/profile", "city-hub_3aprofile"}
	seen := make(map[string]string)
	for _, k := range keys {
		p := f.Path(k)
		if other, ok := seen[p]; ok {
			t.Fatalf("keys %q and %q share file %s", other, k, p)
		}
		seen[p] = k
		if err := f.Write(k, []byte(k)); err != nil {
			t.Fatalf("Write(%q): %v", k, err)
		}
	}

	for _, k := range keys {
		got, err := f.Read(k)
		if err != nil || string(got) != k {
			t.Errorf("Read(%q) = %q, %v", k, got, err)
		}
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	b, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	_ = b.Write("k", []byte("v"))
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err = NewBadger(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	got, err := b.Read("k")
	if err != nil || string(got) != "v" {
		t.Errorf("after reopen: %q, %v", got, err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{KindMemory, false},
		{KindFile, false},
		{KindBadger, false},
		{"redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			b, err := Open(tt.kind, t.TempDir())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
			if b != nil {
				b.Close()
			}
		})
	}
}
