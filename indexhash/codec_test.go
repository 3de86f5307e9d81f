package indexhash

import (
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/stretchr/testify/assert"
)

func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		seq  string
		code Code
	}{
		{"A", 1 * 46656},
		{"N", 5 * 46656},
		{"AC", 1*46656 + 2*7776},
		{"NNNNNNN", Size - 1},
		{"AATAGTT", 1*46656 + 1*7776 + 4*1296 + 1*216 + 3*36 + 4*6 + 4},
	}
	for _, test := range tests {
		c, err := Encode(test.seq)
		assert.NoError(t, err)
		assert.Equal(t, test.code, c, "encode %s", test.seq)
		assert.Equal(t, test.seq, Decode(c))
	}
}

func TestEncodeErrors(t *testing.T) {
	for _, seq := range []string{"", "ACGTACGT", "ACXT", "AC GT", "ACGU"} {
		_, err := Encode(seq)
		assert.Error(t, err, "%q", seq)
		assert.True(t, errors.Is(errors.Invalid, err), "%q: %v", seq, err)
	}
	assert.Panics(t, func() { MustEncode("ACGTACGTA") })
}

func allSeqs(n int, alphabet string) []string {
	if n == 0 {
		return []string{""}
	}
	var r []string
	for _, s := range allSeqs(n-1, alphabet) {
		for i := 0; i < len(alphabet); i++ {
			r = append(r, s+alphabet[i:i+1])
		}
	}
	return r
}

// TestRoundTrip covers every sequence of length 1..5 in both cases and a
// sample of 6- and 7-mers, and checks that no two sequences collide.
func TestRoundTrip(t *testing.T) {
	seen := map[Code]string{}
	for n := 1; n <= 5; n++ {
		for _, s := range allSeqs(n, "ACGTN") {
			c, err := Encode(s)
			assert.NoError(t, err)
			assert.True(t, c < Size)
			if prev, ok := seen[c]; ok {
				t.Fatalf("collision between %s and %s", prev, s)
			}
			seen[c] = s
			assert.Equal(t, s, Decode(c))
			lc, err := Encode(strings.ToLower(s))
			assert.NoError(t, err)
			assert.Equal(t, c, lc)
		}
	}
	for _, s := range []string{"ACGTNA", "nnnnnn", "TTTTTTT", "aatagtt", "GaTtAcA"} {
		assert.Equal(t, strings.ToUpper(s), Decode(MustEncode(s)))
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "ACGTN", Clean("ACGTN"))
	assert.Equal(t, "ACGTN", Clean("acgtn"))
	assert.Equal(t, "ANNTN", Clean("A.-T?"))
	assert.Equal(t, "", Clean(""))
}
