package debugdump

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleState() State {
	return State{
		IDToPath: map[int64][]string{1: {"", "a"}},
		Entries: []PathEntry{
			{Path: []string{"", "a"}, Depths: map[int][]int64{0: {1}}},
		},
		ReferenceSets: map[string]ReferenceSetState{
			"owns": {Src2Tgt: map[int64][]int64{1: {2}}, Tgt2Src: map[int64][]int64{2: {1}}},
		},
	}
}

func TestSdumpIncludesPathAndReftype(t *testing.T) {
	out := SdumpPlain(sampleState())
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "owns")
}

func TestFdumpWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	Fdump(&buf, sampleState())
	assert.NotEmpty(t, buf.String())
}
