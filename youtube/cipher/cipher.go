package cipher

// OpKind identifies one of the three transform primitives observed in
// player script deployments.
type OpKind int

const (
	// OpReverse reverses the whole signature.
	OpReverse OpKind = iota
	// OpSlice drops the first N characters.
	OpSlice
	// OpSwap exchanges the character at position 0 with the one at N mod length.
	OpSwap
)

func (k OpKind) String() string {
	switch k {
	case OpReverse:
		return "reverse"
	case OpSlice:
		return "slice"
	case OpSwap:
		return "swap"
	}
	return "unknown"
}

// Operation is a single signature transform step. N is meaningful for
// OpSlice and OpSwap only.
type Operation struct {
	Kind OpKind
	N    int
}

// CompiledCipher is an ordered operation list compiled from one player
// script version. Immutable after compilation; safe to share across
// resolutions.
type CompiledCipher struct {
	SourceURL  string
	Operations []Operation
}

// Decipher applies the compiled operation list to a signature and returns
// the deciphered value. Pure and deterministic.
func (c *CompiledCipher) Decipher(signature string) string {
	r := []rune(signature)
	for _, op := range c.Operations {
		switch op.Kind {
		case OpReverse:
			r = reverseRunes(r)
		case OpSlice:
			r = sliceRunes(r, op.N)
		case OpSwap:
			r = swapRunes(r, op.N)
		}
	}
	return string(r)
}

func reverseRunes(s []rune) []rune {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return s
}

func sliceRunes(s []rune, n int) []rune {
	if n < 0 || n > len(s) {
		return s
	}
	return s[n:]
}

func swapRunes(s []rune, n int) []rune {
	if len(s) <= 1 {
		return s
	}
	n = n % len(s)
	if n < 0 {
		n += len(s)
	}
	s[0], s[n] = s[n], s[0]
	return s
}
