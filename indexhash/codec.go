// Package indexhash encodes short nucleotide sequences as dense integers.
//
// A sequence of up to MaxLen bases over {A,C,G,T,N} is written as a base-6
// number whose most significant digit is the first base. Digit 0 is reserved
// for "no base", so shorter sequences leave their trailing digits zero and
// every sequence of length 1..MaxLen gets a distinct code in [0, Size).
package indexhash

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

const (
	// MaxLen is the longest sequence that can be encoded.
	MaxLen = 7
	// Size is the number of distinct codes, 6^MaxLen.
	Size = 279936

	radix       = 6
	invalidBase = uint8(255)
)

// Code is the encoded form of a sequence.
type Code uint32

var (
	asciiToDigit [256]uint8
	digitToASCII = [radix]byte{0, 'A', 'C', 'G', 'T', 'N'}
	// placeValue[i] is radix^(MaxLen-1-i).
	placeValue [MaxLen]Code
)

func init() {
	for i := range asciiToDigit {
		asciiToDigit[i] = invalidBase
	}
	for d := 1; d < radix; d++ {
		c := digitToASCII[d]
		asciiToDigit[c] = uint8(d)
		asciiToDigit[c+('a'-'A')] = uint8(d)
	}
	v := Code(1)
	for i := MaxLen - 1; i >= 0; i-- {
		placeValue[i] = v
		v *= radix
	}
	if v != Size {
		panic(fmt.Sprintf("indexhash: size %d, expect %d", v, Size))
	}
}

// Encode returns the code of seq. Bases may be in either case. It fails if seq
// is empty, longer than MaxLen, or contains a byte other than ACGTN.
func Encode(seq string) (Code, error) {
	if len(seq) == 0 {
		return 0, errors.E(errors.Invalid, "indexhash: empty sequence")
	}
	if len(seq) > MaxLen {
		return 0, errors.E(errors.Invalid, fmt.Sprintf("indexhash: sequence %q is longer than %d bases", seq, MaxLen))
	}
	var c Code
	for i := 0; i < len(seq); i++ {
		d := asciiToDigit[seq[i]]
		if d == invalidBase {
			return 0, errors.E(errors.Invalid, fmt.Sprintf("indexhash: invalid base %q in %q", seq[i], seq))
		}
		c += Code(d) * placeValue[i]
	}
	return c, nil
}

// MustEncode is like Encode, but crashes the process on error. It is meant for
// sequences that have already been bounded and cleaned.
func MustEncode(seq string) Code {
	c, err := Encode(seq)
	if err != nil {
		log.Panicf("%v", err)
	}
	return c
}

// Decode returns the uppercase sequence for c. Digits are read from the most
// significant end and decoding stops at the first zero digit.
func Decode(c Code) string {
	var buf [MaxLen]byte
	n := 0
	for i := 0; i < MaxLen; i++ {
		d := (c / placeValue[i]) % radix
		if d == 0 {
			break
		}
		buf[n] = digitToASCII[d]
		n++
	}
	return string(buf[:n])
}

// Clean returns seq in uppercase with every byte outside ACGT replaced by N, so
// that any read fragment of suitable length can be encoded.
func Clean(seq string) string {
	var b []byte
	for i := 0; i < len(seq); i++ {
		d := asciiToDigit[seq[i]]
		var out byte
		if d == invalidBase {
			out = 'N'
		} else {
			out = digitToASCII[d]
		}
		if out != seq[i] && b == nil {
			b = []byte(seq)
		}
		if b != nil {
			b[i] = out
		}
	}
	if b == nil {
		return seq
	}
	return string(b)
}
