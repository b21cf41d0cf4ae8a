// Package debugdump renders an ObjectMap's internal state for diagnostics
// and test failure output, wrapping github.com/janvaclavik/govar's Sdump/
// Fdump rather than hand-rolling a pretty-printer.
package debugdump

import (
	"io"

	"github.com/janvaclavik/govar"
)

// PathEntry is a flattened, exported view of one pathTrie row, suitable for
// handing to govar (which can only usefully introspect exported fields).
type PathEntry struct {
	Path   []string
	Depths map[int][]int64
}

// State is the plain, exported snapshot [Dump]/[Sdump] render. Callers
// build one via an accessor on the map they want to inspect (the root
// package's ObjectMap keeps its fields unexported, so it is responsible for
// translating its own state into this shape).
type State struct {
	IDToPath map[int64][]string
	Entries  []PathEntry
	ReferenceSets map[string]ReferenceSetState
}

// ReferenceSetState is the exported view of one ReferenceSet.
type ReferenceSetState struct {
	Src2Tgt map[int64][]int64
	Tgt2Src map[int64][]int64
}

// Sdump renders state as a string using govar's default configuration
// (types, colors, metadata, reference tracking all enabled).
func Sdump(state State) string {
	return govar.Sdump(state)
}

// Fdump writes state to w using govar's default configuration.
func Fdump(w io.Writer, state State) {
	govar.Fdump(w, state)
}

// SdumpPlain renders state without ANSI color codes, for capturing into
// test failure messages or log files.
func SdumpPlain(state State) string {
	return govar.SdumpNoColors(state)
}
