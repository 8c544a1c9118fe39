package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRanges(t *testing.T) {
	tests := []struct {
		input   string
		want    []PageRange
		wantErr bool
	}{
		{input: "", want: nil},
		{input: "3", want: []PageRange{{Start: 3, End: 3}}},
		{input: "1-3, 5", want: []PageRange{{Start: 1, End: 3}, {Start: 5, End: 5}}},
		{input: "9-", want: []PageRange{{Start: 9, End: 0}}},
		{input: "2-2,,4", want: []PageRange{{Start: 2, End: 2}, {Start: 4, End: 4}}},
		{input: "0", wantErr: true},
		{input: "a-3", wantErr: true},
		{input: "5-2", wantErr: true},
		{input: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePageRanges(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRanges(t *testing.T) {
	got := normalizeRanges([]PageRange{
		{Start: 0, End: 2},
		{Start: 4, End: 0},
		{Start: 9, End: 12},
	}, 5)

	assert.Equal(t, []PageRange{{Start: 1, End: 2}, {Start: 4, End: 5}}, got)
}

func TestDocument_SelectPages(t *testing.T) {
	doc, err := newDocument("a.pdf", "x", []string{"cover", "q1", "q2", "appendix"})
	require.NoError(t, err)

	same, err := doc.SelectPages(nil)
	require.NoError(t, err)
	assert.Same(t, doc, same)

	selected, err := doc.SelectPages([]PageRange{{Start: 3, End: 3}, {Start: 2, End: 3}})
	require.NoError(t, err)
	assert.Equal(t, "q1\nq2\n", selected.Text)
	assert.Equal(t, 2, selected.Pages)

	_, err = doc.SelectPages([]PageRange{{Start: 7, End: 0}})
	assert.ErrorIs(t, err, ErrNoText)
}
