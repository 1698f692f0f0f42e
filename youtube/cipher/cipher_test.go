package cipher

import (
	"sort"
	"testing"
)

func TestDecipherGoldenVector(t *testing.T) {
	// Swap(2) on "ABCD" -> "CBAD"; Reverse -> "DABC".
	c := &CompiledCipher{
		SourceURL: "https://example.com/player.js",
		Operations: []Operation{
			{Kind: OpSwap, N: 2},
			{Kind: OpReverse},
		},
	}

	if got := c.Decipher("ABCD"); got != "DABC" {
		t.Errorf("Decipher(\"ABCD\") = %q, want %q", got, "DABC")
	}
}

func TestDecipherOperations(t *testing.T) {
	tests := []struct {
		name     string
		ops      []Operation
		input    string
		expected string
	}{
		{"reverse", []Operation{{Kind: OpReverse}}, "abcdef", "fedcba"},
		{"slice", []Operation{{Kind: OpSlice, N: 2}}, "abcdef", "cdef"},
		{"slice full length", []Operation{{Kind: OpSlice, N: 6}}, "abcdef", ""},
		{"slice beyond length keeps input", []Operation{{Kind: OpSlice, N: 7}}, "abcdef", "abcdef"},
		{"swap", []Operation{{Kind: OpSwap, N: 3}}, "abcdef", "dbcaef"},
		{"swap wraps modulo length", []Operation{{Kind: OpSwap, N: 7}}, "abcdef", "bacdef"},
		{"swap single char", []Operation{{Kind: OpSwap, N: 3}}, "a", "a"},
		{"empty input", []Operation{{Kind: OpReverse}}, "", ""},
		{
			"composite",
			[]Operation{{Kind: OpReverse}, {Kind: OpSlice, N: 1}, {Kind: OpSwap, N: 2}},
			"0123456789",
			"678543210",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CompiledCipher{Operations: tt.ops}
			if got := c.Decipher(tt.input); got != tt.expected {
				t.Errorf("Decipher(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDecipherDeterministic(t *testing.T) {
	c := &CompiledCipher{Operations: []Operation{
		{Kind: OpReverse},
		{Kind: OpSlice, N: 3},
		{Kind: OpSwap, N: 5},
	}}

	first := c.Decipher("qwertyuiopasdfgh")
	for i := 0; i < 10; i++ {
		if got := c.Decipher("qwertyuiopasdfgh"); got != first {
			t.Fatalf("Decipher not deterministic: %q vs %q", got, first)
		}
	}
}

// Reverse and swap never change the character multiset; slice only removes a
// known-length prefix.
func TestDecipherPreservesMultiset(t *testing.T) {
	sortedRunes := func(s string) string {
		r := []rune(s)
		sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
		return string(r)
	}

	input := "a1b2c3d4e5f6g7"

	c := &CompiledCipher{Operations: []Operation{
		{Kind: OpReverse},
		{Kind: OpSwap, N: 4},
		{Kind: OpReverse},
		{Kind: OpSwap, N: 11},
	}}
	if got := c.Decipher(input); sortedRunes(got) != sortedRunes(input) {
		t.Errorf("multiset changed without slice: %q -> %q", input, got)
	}

	withSlice := &CompiledCipher{Operations: []Operation{{Kind: OpSlice, N: 3}}}
	if got := withSlice.Decipher(input); len(got) != len(input)-3 {
		t.Errorf("slice removed %d chars, want 3", len(input)-len(got))
	}
}

func TestOpKindString(t *testing.T) {
	tests := []struct {
		kind     OpKind
		expected string
	}{
		{OpReverse, "reverse"},
		{OpSlice, "slice"},
		{OpSwap, "swap"},
		{OpKind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("OpKind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
		}
	}
}
