package scanner_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chopper-dev/chopper/internal/scanner"
	"github.com/chopper-dev/chopper/pkg/types"
)

// colAfterGT returns the column immediately after the first '>' of line n
// (1-based) in src.
func colAfterGT(t *testing.T, src string, n int) int {
	t.Helper()
	line := strings.Split(src, "\n")[n-1]
	idx := strings.IndexByte(line, '>')
	require.GreaterOrEqual(t, idx, 0)
	return idx + 1
}

func TestScanSingleBlock(t *testing.T) {
	src := `<html>
  <style chopper:file="css/main.css">
    .a { color: red; }
  </style>
</html>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, types.KindStyle, b.Kind)
	assert.Equal(t, "css/main.css", b.Path)
	assert.Equal(t, types.FileTypeCSS, b.FileType)
	assert.Equal(t, types.Pos{Line: 2, Col: colAfterGT(t, src, 2)}, b.Start)
	assert.Equal(t, types.Pos{Line: 4, Col: 2}, b.End)
}

func TestScanAllThreeKinds(t *testing.T) {
	src := `<style chopper:file="a.css">
x
</style>
<script chopper:file="b.js">
y
</script>
<chop chopper:file="c.html">
z
</chop>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 3)
	assert.Equal(t, types.KindStyle, blocks[0].Kind)
	assert.Equal(t, types.KindScript, blocks[1].Kind)
	assert.Equal(t, types.KindChop, blocks[2].Kind)
	assert.Equal(t, "a.css", blocks[0].Path)
	assert.Equal(t, "b.js", blocks[1].Path)
	assert.Equal(t, "c.html", blocks[2].Path)
}

func TestScanMultilineOpeningTag(t *testing.T) {
	src := `<script
    type="module"
    chopper:file="js/app.js">
console.log(1);
</script>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, "js/app.js", blocks[0].Path)
	assert.Equal(t, types.Pos{Line: 3, Col: colAfterGT(t, src, 3)}, blocks[0].Start)
}

func TestScanQuotedValueSpanningLines(t *testing.T) {
	src := "<style chopper:file=\"css/\nmain.css\">\nx\n</style>"

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, "css/\nmain.css", blocks[0].Path)
}

func TestScanUnquotedAttributeValue(t *testing.T) {
	src := "<style chopper:file=main.css>\nx\n</style>"

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, "main.css", blocks[0].Path)
}

func TestScanNestedSameKind(t *testing.T) {
	// The inner tags raise and lower the shared depth counter; only the
	// outermost close emits.
	src := `<chop chopper:file="outer.html">
<chop>
inner
</chop>
</chop>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, "outer.html", blocks[0].Path)
	assert.Equal(t, types.Pos{Line: 5, Col: 0}, blocks[0].End)
}

func TestScanSharedDepthAcrossKinds(t *testing.T) {
	// A nested recognized tag of a different kind still nests.
	src := `<chop chopper:file="page.html">
<style>
.x {}
</style>
</chop>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, types.KindChop, blocks[0].Kind)
	assert.Equal(t, types.Pos{Line: 5, Col: 0}, blocks[0].End)
}

func TestScanUnmatchedClosingTagDiscarded(t *testing.T) {
	src := `</style>
<style chopper:file="a.css">
x
</style>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, "a.css", blocks[0].Path)
}

func TestScanMissingClosingTagEmitsNothing(t *testing.T) {
	src := `<style chopper:file="a.css">
x`

	assert.Empty(t, scanner.Scan(src))
}

func TestScanNoMarkerNotEmitted(t *testing.T) {
	src := `<style>
.x {}
</style>`

	assert.Empty(t, scanner.Scan(src))
}

func TestScanEmptyMarkerStillEmitted(t *testing.T) {
	src := `<style chopper:file="">
x
</style>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, "", blocks[0].Path)
	assert.Equal(t, types.FileTypeNone, blocks[0].FileType)
}

func TestScanSelfClosingIgnored(t *testing.T) {
	src := `<chop chopper:file="a.html" />
<style chopper:file="b.css">
x
</style>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, "b.css", blocks[0].Path)
}

func TestScanCommentedBlockSkipped(t *testing.T) {
	src := `<!--
<style chopper:file="a.css">
x
</style>
-->
<style chopper:file="b.css">
y
</style>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, "b.css", blocks[0].Path)
}

func TestScanUnrecognizedTagsIgnored(t *testing.T) {
	src := `<div chopper:file="a.html">
<style chopper:file="b.css">
x
</style>
</div>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, "b.css", blocks[0].Path)
}

func TestScanDeterministic(t *testing.T) {
	src := `<style chopper:file="a.css">
x
</style>`

	first := scanner.Scan(src)
	second := scanner.Scan(src)
	assert.Equal(t, first, second)
}

func TestScanSourceOrder(t *testing.T) {
	src := `<script chopper:file="1.js">
a
</script>
<style chopper:file="2.css">
b
</style>`

	blocks := scanner.Scan(src)
	require.Len(t, blocks, 2)
	assert.Equal(t, "1.js", blocks[0].Path)
	assert.Equal(t, "2.css", blocks[1].Path)
}
