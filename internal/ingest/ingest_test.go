package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverFiltersAndDeduplicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "lease one")
	writeFile(t, filepath.Join(root, "nested", "b.PDF"), "lease two")
	writeFile(t, filepath.Join(root, "nested", "copy.pdf"), "lease one")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignore me")
	writeFile(t, filepath.Join(root, ".hidden", "c.pdf"), "hidden")

	got, stats, err := Discover(context.Background(), root, true, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if stats.Matched != 3 || stats.Unique != 2 || stats.Deduplicated != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(got) != 3 {
		t.Fatalf("candidates = %+v", got)
	}
	var dup *Candidate
	for i := range got {
		if got[i].DuplicateOf != "" {
			dup = &got[i]
		}
	}
	if dup == nil || filepath.Base(dup.Path) != "copy.pdf" || filepath.Base(dup.DuplicateOf) != "a.pdf" {
		t.Errorf("duplicate = %+v", dup)
	}
}

func TestDiscoverIncludesHiddenWhenAsked(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden", "c.pdf"), "hidden")
	_, stats, err := Discover(context.Background(), root, false, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if stats.Matched != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDiscoverRequiresRoot(t *testing.T) {
	if _, _, err := Discover(context.Background(), " ", false, nil); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestHashFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.pdf")
	writeFile(t, p, "abc")
	sum, size, err := HashFile(p)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if sum != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" || size != 3 {
		t.Errorf("HashFile = %s, %d", sum, size)
	}
}

func TestAllowedExt(t *testing.T) {
	for ext, want := range map[string]bool{".pdf": true, "PDF": true, ".docx": false, "": false} {
		if got := AllowedExt(ext); got != want {
			t.Errorf("AllowedExt(%q) = %v", ext, got)
		}
	}
}
