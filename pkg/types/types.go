// Package types defines the core data structures shared across the chopper
// pipeline.
package types

import (
	"path/filepath"
	"strings"
)

// Kind identifies which of the three recognized tags a block came from.
// It determines the output root the block's destination path is resolved
// against.
type Kind string

// The three recognized tag kinds.
const (
	KindStyle  Kind = "style"
	KindScript Kind = "script"
	KindChop   Kind = "chop"
)

// KindForTag maps a markup tag name to its Kind. ok is false for every tag
// chopper does not recognize.
func KindForTag(tag string) (Kind, bool) {
	switch k := Kind(tag); k {
	case KindStyle, KindScript, KindChop:
		return k, true
	}
	return "", false
}

// FileType classifies a destination file by extension. It selects the
// comment syntax used for provenance comments.
type FileType string

// Known destination file types. Unknown extensions map to FileTypeNone,
// which carries an empty comment syntax.
const (
	FileTypeCSS     FileType = "css"
	FileTypeSCSS    FileType = "scss"
	FileTypeJS      FileType = "js"
	FileTypeMJS     FileType = "mjs"
	FileTypeTS      FileType = "ts"
	FileTypeTSX     FileType = "tsx"
	FileTypeJSX     FileType = "jsx"
	FileTypeHTML    FileType = "html"
	FileTypePHP     FileType = "php"
	FileTypeTwig    FileType = "twig"
	FileTypeAntlers FileType = "antlers"
	FileTypeNone    FileType = "none"
)

// FileTypeForPath derives the FileType from the path's extension.
func FileTypeForPath(path string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ft := FileType(ext); ft {
	case FileTypeCSS, FileTypeSCSS, FileTypeJS, FileTypeMJS, FileTypeTS,
		FileTypeTSX, FileTypeJSX, FileTypeHTML, FileTypePHP, FileTypeTwig,
		FileTypeAntlers:
		return ft
	}
	return FileTypeNone
}

// Pos is a position in a source file. Line is 1-based, Col is a 0-based
// byte offset within the line.
type Pos struct {
	Line int
	Col  int
}

// Block is one tagged region found by the scanner. Start marks the position
// immediately after the opening tag, End the start of the closing tag.
// Positions are only valid for the exact source text snapshot that produced
// them; any mutation of that text invalidates every position from the same
// scan.
type Block struct {
	Kind       Kind
	Path       string // declared relative path from chopper:file; may be empty
	FileType   FileType
	Start      Pos
	End        Pos
	RawContent string // exact slice between Start and End, unnormalized
	Content    string // dedented, trimmed, single trailing newline
	BasePath   string // configured output root for this block's kind
	SourceFile string
}

// Action is the outcome vocabulary used by the reporter and the ChopLog.
type Action string

const (
	ActionChop         Action = "Chop"
	ActionWrite        Action = "Write"
	ActionNew          Action = "New"
	ActionMkdir        Action = "Mkdir"
	ActionUnchanged    Action = "File unchanged"
	ActionDoesNotExist Action = "Does not exist"
	ActionReject       Action = "Rejected"
	ActionUpdate       Action = "Update source"
)

// ActionEvent is one reported outcome.
type ActionEvent struct {
	Action Action
	Path   string
	Detail string
}

// ChopLog accumulates the ordered outcomes for a single source file. It is
// discarded once the file finishes processing and is never persisted.
type ChopLog struct {
	Events []ActionEvent
}

// Add appends an event to the log.
func (l *ChopLog) Add(a Action, path, detail string) {
	if l == nil {
		return
	}
	l.Events = append(l.Events, ActionEvent{Action: a, Path: path, Detail: detail})
}

// Count returns the number of events with the given action.
func (l *ChopLog) Count(a Action) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, e := range l.Events {
		if e.Action == a {
			n++
		}
	}
	return n
}
