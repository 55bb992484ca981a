package fsops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRealFS_Exists(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	existing := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "existing file", path: existing, want: true},
		{name: "existing directory", path: tmpDir, want: true},
		{name: "missing file", path: filepath.Join(tmpDir, "nope"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fs.Exists(tt.path)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRealFS_IsRegularFile(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	file := filepath.Join(tmpDir, "main.go")
	if err := os.WriteFile(file, []byte("package main"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmpDir, "link.go")
	if err := os.Symlink(file, link); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular file", path: file, want: true},
		{name: "symlink to file", path: link, want: true},
		{name: "directory", path: tmpDir, want: false},
		{name: "missing", path: filepath.Join(tmpDir, "gone.go"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fs.IsRegularFile(tt.path)
			if err != nil {
				t.Fatalf("IsRegularFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsRegularFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRealFS_AtomicWrite(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(tmpDir, "a", "b", "state.json")
		if err := fs.AtomicWrite(path, []byte(`{}`), 0644); err != nil {
			t.Fatalf("AtomicWrite() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != `{}` {
			t.Errorf("content = %q, want %q", data, `{}`)
		}
	})

	t.Run("overwrites and leaves no temp files", func(t *testing.T) {
		path := filepath.Join(tmpDir, "state.json")
		if err := fs.AtomicWrite(path, []byte("first"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := fs.AtomicWrite(path, []byte("second"), 0600); err != nil {
			t.Fatal(err)
		}

		data, err := fs.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "second" {
			t.Errorf("content = %q, want %q", data, "second")
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("perm = %v, want 0600", info.Mode().Perm())
		}

		matches, _ := filepath.Glob(filepath.Join(tmpDir, ".branchtabs-tmp-*"))
		if len(matches) != 0 {
			t.Errorf("temp files left behind: %v", matches)
		}
	})
}

func TestRealFS_Remove(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := fs.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if exists, _ := fs.Exists(path); exists {
		t.Error("file still exists after Remove")
	}
	if err := fs.Remove(path); err != nil {
		t.Errorf("Remove() of missing file error = %v, want nil", err)
	}
}
