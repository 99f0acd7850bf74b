package vfs

import "testing"

func TestWriteReadFile(t *testing.T) {
	fs := NewMemory()
	if err := WriteFile(fs, "a/b.txt", []byte("hello")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(fs, "a/b.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("ReadFile = %q, want %q", got, "hello")
	}
}

func TestExistsAndStat(t *testing.T) {
	fs := NewMemory()
	if Exists(fs, "missing.txt") {
		t.Error("Exists() on missing file = true")
	}
	if err := WriteFile(fs, "present.txt", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !Exists(fs, "present.txt") {
		t.Error("Exists() on written file = false")
	}
	info, ok, err := Stat(fs, "present.txt")
	if err != nil || !ok {
		t.Fatalf("Stat() = %v, %v, %v", info, ok, err)
	}
	if info.IsDir() {
		t.Error("Stat() reports a file as a directory")
	}
}

func TestReadDirSortedByName(t *testing.T) {
	fs := NewMemory()
	for _, p := range []string{"dir/c.txt", "dir/a.txt", "dir/b.txt"} {
		if err := WriteFile(fs, p, []byte("x")); err != nil {
			t.Fatalf("WriteFile(%s): %v", p, err)
		}
	}
	entries, err := ReadDir(fs, "dir")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ReadDir returned %d entries, want 3", len(entries))
	}
	want := []string{"a.txt", "b.txt", "c.txt"}
	for i, e := range entries {
		if e.Name != want[i] {
			t.Errorf("entries[%d].Name = %q, want %q", i, e.Name, want[i])
		}
		if e.IsDir {
			t.Errorf("entries[%d].IsDir = true, want false", i)
		}
	}
}
