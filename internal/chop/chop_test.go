package chop_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chopper-dev/chopper/internal/chop"
	"github.com/chopper-dev/chopper/internal/comment"
	"github.com/chopper-dev/chopper/internal/config"
	"github.com/chopper-dev/chopper/internal/reconcile"
	"github.com/chopper-dev/chopper/internal/report"
	"github.com/chopper-dev/chopper/internal/writer"
	"github.com/chopper-dev/chopper/pkg/types"
)

const compositeSource = `<html>
  <style chopper:file="css/page.css">
    .a { color: red; }
  </style>
  <script chopper:file="js/page.js">
    console.log(1);
  </script>
  <chop chopper:file="html/partial.html">
    <p>hi</p>
  </chop>
</html>
`

type fixture struct {
	dir    string
	source string
	opts   *config.Options
	rep    *report.Reporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "page.chopper.html")
	require.NoError(t, os.WriteFile(source, []byte(compositeSource), 0600))

	opts := config.Default()
	opts.SourceRoot = dir
	opts.StyleDir = dir
	opts.ScriptDir = dir
	opts.HTMLDir = dir

	return &fixture{
		dir:    dir,
		source: source,
		opts:   opts,
		rep:    report.New(&bytes.Buffer{}, &bytes.Buffer{}, false),
	}
}

func (f *fixture) chopper(t *testing.T, warn bool, rec writer.Reconciler) *chop.Chopper {
	t.Helper()
	w := writer.New(warn, false, comment.ModeNone, rec, f.rep)
	return chop.New(f.opts, w, f.rep)
}

func (f *fixture) readDest(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, rel))
	require.NoError(t, err)
	return string(data)
}

func TestFileChopsAllThreeKinds(t *testing.T) {
	f := newFixture(t)
	ch := f.chopper(t, false, nil)

	log := &types.ChopLog{}
	ok, err := ch.FileWithLog(f.source, log)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, ".a { color: red; }\n", f.readDest(t, "css/page.css"))
	assert.Equal(t, "console.log(1);\n", f.readDest(t, "js/page.js"))
	assert.Equal(t, "<p>hi</p>\n", f.readDest(t, "html/partial.html"))
	assert.Equal(t, 3, log.Count(types.ActionNew))
}

func TestFileIdempotent(t *testing.T) {
	f := newFixture(t)
	ch := f.chopper(t, false, nil)

	ok, err := ch.File(f.source)
	require.NoError(t, err)
	require.True(t, ok)

	log := &types.ChopLog{}
	ok, err = ch.FileWithLog(f.source, log)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, log.Count(types.ActionUnchanged))
	assert.Equal(t, 0, log.Count(types.ActionWrite))

	data, err := os.ReadFile(f.source)
	require.NoError(t, err)
	assert.Equal(t, compositeSource, string(data))
}

func TestFileSequentialUpdates(t *testing.T) {
	f := newFixture(t)

	// Chop once, then edit two destinations.
	ok, err := f.chopper(t, false, nil).File(f.source)
	require.NoError(t, err)
	require.True(t, ok)

	cssDest := filepath.Join(f.dir, "css", "page.css")
	jsDest := filepath.Join(f.dir, "js", "page.js")
	require.NoError(t, os.WriteFile(cssDest, []byte(".a { color: blue; }\n"), 0600))
	require.NoError(t, os.WriteFile(jsDest, []byte("console.log(2);\n"), 0600))

	// Accept both updates. The second splice depends on positions from the
	// rescan after the first one.
	decider := reconcile.DeciderFunc(func(destPath, sourcePath string) (reconcile.Decision, error) {
		return reconcile.Accept, nil
	})
	rec := reconcile.New(decider, comment.ModeNone, f.opts.Indent, false, f.rep)
	ch := f.chopper(t, true, rec)

	log := &types.ChopLog{}
	ok, err = ch.FileWithLog(f.source, log)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, log.Count(types.ActionUpdate))

	data, err := os.ReadFile(f.source)
	require.NoError(t, err)
	updated := string(data)
	assert.Contains(t, updated, "color: blue")
	assert.Contains(t, updated, "console.log(2);")
	assert.Contains(t, updated, "<p>hi</p>")
	assert.NotContains(t, updated, "color: red")
	assert.NotContains(t, updated, "console.log(1);")

	// The source now matches the destinations again.
	log = &types.ChopLog{}
	ok, err = f.chopper(t, true, nil).FileWithLog(f.source, log)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, log.Count(types.ActionUnchanged))
}

func TestFileCancelShortCircuits(t *testing.T) {
	f := newFixture(t)

	ok, err := f.chopper(t, false, nil).File(f.source)
	require.NoError(t, err)
	require.True(t, ok)

	cssDest := filepath.Join(f.dir, "css", "page.css")
	require.NoError(t, os.WriteFile(cssDest, []byte("edited\n"), 0600))

	decider := reconcile.DeciderFunc(func(destPath, sourcePath string) (reconcile.Decision, error) {
		return reconcile.Cancel, nil
	})
	rec := reconcile.New(decider, comment.ModeNone, f.opts.Indent, false, f.rep)
	ch := f.chopper(t, true, rec)

	_, err = ch.File(f.source)
	assert.ErrorIs(t, err, reconcile.ErrCancelled)
}

func TestFileDeclinedUpdateFailsBlock(t *testing.T) {
	f := newFixture(t)

	ok, err := f.chopper(t, false, nil).File(f.source)
	require.NoError(t, err)
	require.True(t, ok)

	cssDest := filepath.Join(f.dir, "css", "page.css")
	require.NoError(t, os.WriteFile(cssDest, []byte("edited\n"), 0600))

	decider := reconcile.DeciderFunc(func(destPath, sourcePath string) (reconcile.Decision, error) {
		return reconcile.Decline, nil
	})
	rec := reconcile.New(decider, comment.ModeNone, f.opts.Indent, false, f.rep)

	ok, err = f.chopper(t, true, rec).File(f.source)
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := os.ReadFile(f.source)
	require.NoError(t, err)
	assert.Equal(t, compositeSource, string(data))
}

func TestFileInvalidUTF8Fails(t *testing.T) {
	f := newFixture(t)
	bad := filepath.Join(f.dir, "bad.chopper.html")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xfe, '<'}, 0600))

	ok, err := f.chopper(t, false, nil).File(bad)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileMissingSourceFails(t *testing.T) {
	f := newFixture(t)

	ok, err := f.chopper(t, false, nil).File(filepath.Join(f.dir, "missing.chopper.html"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBatchAggregatesFailures(t *testing.T) {
	f := newFixture(t)
	bad := filepath.Join(f.dir, "bad.chopper.html")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xfe}, 0600))

	ch := f.chopper(t, false, nil)
	ok, err := ch.Batch([]string{bad, f.source})
	require.NoError(t, err)
	assert.False(t, ok)

	// The good file was still processed.
	assert.Equal(t, ".a { color: red; }\n", f.readDest(t, "css/page.css"))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0750))
	paths := []string{
		filepath.Join(dir, "b.chopper.html"),
		filepath.Join(dir, "sub", "a.chopper.html"),
	}
	for _, p := range paths {
		require.NoError(t, os.WriteFile(p, []byte(""), 0600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.html"), []byte(""), 0600))

	files, err := chop.Discover(dir, ".chopper.html")
	require.NoError(t, err)
	assert.Equal(t, []string{paths[0], paths[1]}, files)
}

func TestDiscoverFileRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.chopper.html")
	require.NoError(t, os.WriteFile(file, []byte(""), 0600))

	files, err := chop.Discover(file, ".chopper.html")
	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := chop.Discover(filepath.Join(t.TempDir(), "nope"), ".chopper.html")
	assert.Error(t, err)
}
