package main_test

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// snapshotTree returns the content of every regular file under dir keyed by
// relative path.
func snapshotTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to snapshot %s: %v", dir, err)
	}
	return files
}

func TestIdempotency(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()
	writeSource(t, dir, "page.chopper.html", pageSource)

	cmd := exec.Command(binary, dir)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("First execution failed: %v\nOutput: %s", err, output)
	}
	first := snapshotTree(t, dir)

	cmd = exec.Command(binary, dir)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Second execution failed: %v\nOutput: %s", err, output)
	}
	second := snapshotTree(t, dir)

	if len(first) != len(second) {
		t.Fatalf("file count changed between runs: %d vs %d", len(first), len(second))
	}
	for rel, content := range first {
		if second[rel] != content {
			t.Errorf("file %s changed on second run", rel)
		}
	}
}

func TestIdempotencyAfterSourceEdit(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()
	source := writeSource(t, dir, "page.chopper.html", pageSource)

	cmd := exec.Command(binary, dir)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("First execution failed: %v\nOutput: %s", err, output)
	}

	// Editing the source and re-chopping propagates to the destination.
	edited := []byte(`<html>
  <style chopper:file="css/page.css">
    .a { color: green; }
  </style>
  <script chopper:file="js/page.js">
    console.log(1);
  </script>
  <chop chopper:file="partials/header.html">
    <h1>Title</h1>
  </chop>
</html>
`)
	if err := os.WriteFile(source, edited, 0644); err != nil {
		t.Fatal(err)
	}

	cmd = exec.Command(binary, dir)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Second execution failed: %v\nOutput: %s", err, output)
	}

	data, err := os.ReadFile(filepath.Join(dir, "css", "page.css"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ".a { color: green; }\n" {
		t.Errorf("destination not updated: %q", data)
	}
}
