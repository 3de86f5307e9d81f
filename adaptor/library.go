// Package adaptor holds the P1 and P2 tag libraries used to demultiplex RAD
// sequencing runs, and the matcher that finds library tags in reads.
package adaptor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// Family identifies one of the two tag families.
type Family int

const (
	// P1 tags sit at the start of R1, followed by the restriction motif.
	P1 Family = iota
	// P2 tags are read from the start of the index read.
	P2
)

// String returns "P1" or "P2".
func (f Family) String() string {
	if f == P1 {
		return "P1"
	}
	return "P2"
}

const (
	// Motif is the restriction-site remnant that follows every P1 tag.
	Motif = "TGCAG"
	// MotifLen is len(Motif).
	MotifLen = len(Motif)
	// P2Len is the number of index-read bases compared against P2 tags.
	P2Len = 7
	// DefaultMaxAdaptors is the default ceiling on the size of each family.
	DefaultMaxAdaptors = 100
)

// Built-in tags, used when no adaptor files are supplied. P1 tags include the
// trailing motif.
var (
	defaultP1 = []string{
		"TGAGTGCAG",
		"GCTTTGCAG",
		"ACGATTGCAG",
		"CATCGTGCAG",
		"AGCTGATGCAG",
		"TTAGCCTGCAG",
		"GACTTGCTGCAG",
		"CTGATCATGCAG",
		"ATCGTGCAG",
		"CGATATGCAG",
		"GTACGATGCAG",
		"TCAGTCATGCAG",
	}
	defaultP2 = []string{
		"AATAGTT",
		"CGTCAAG",
		"GTACGCA",
		"TCGATGC",
		"ACTGCTA",
		"GATCTCG",
		"CTAGAGC",
		"TGCATAC",
	}
)

// Library is an ordered pair of tag lists. The position of a tag in its list
// is its identity; a Library is immutable once built.
type Library struct {
	tags [2][]string
}

// NewLibrary creates a library from the given tags. The slices are copied and
// used verbatim. Neither list may hold more than maxAdaptors entries.
func NewLibrary(p1, p2 []string, maxAdaptors int) (*Library, error) {
	lib := &Library{}
	for f, tags := range [][]string{p1, p2} {
		if maxAdaptors > 0 && len(tags) > maxAdaptors {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("%d %v adaptors exceed the limit of %d", len(tags), Family(f), maxAdaptors))
		}
		lib.tags[f] = append([]string(nil), tags...)
	}
	return lib, nil
}

// DefaultLibrary returns the built-in library.
func DefaultLibrary() *Library {
	lib, err := NewLibrary(defaultP1, defaultP2, 0)
	if err != nil {
		panic(err)
	}
	return lib
}

// LoadLibrary reads P1 tags from p1Path and P2 tags from p2Path. Each
// non-blank line holds one tag. P1 tags get Motif appended.
func LoadLibrary(ctx context.Context, p1Path, p2Path string, maxAdaptors int) (*Library, error) {
	p1, err := readTags(ctx, p1Path)
	if err != nil {
		return nil, err
	}
	for i := range p1 {
		p1[i] += Motif
	}
	p2, err := readTags(ctx, p2Path)
	if err != nil {
		return nil, err
	}
	lib, err := NewLibrary(p1, p2, maxAdaptors)
	if err != nil {
		return nil, errors.E(err, p1Path, p2Path)
	}
	log.Printf("Read %d P1 adaptors from %s and %d P2 adaptors from %s", len(p1), p1Path, len(p2), p2Path)
	return lib, nil
}

func readTags(ctx context.Context, path string) ([]string, error) {
	data, err := file.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.E(err, "read adaptor file", path)
	}
	var tags []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		tag := strings.TrimRightFunc(sc.Text(), func(r rune) bool { return r <= ' ' })
		if strings.TrimSpace(tag) == "" {
			continue
		}
		tags = append(tags, tag)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.E(err, "scan adaptor file", path)
	}
	return tags, nil
}

// Tags returns the tags of the given family in priority order. The caller must
// not modify the slice.
func (l *Library) Tags(f Family) []string { return l.tags[f] }

// Len returns the number of tags in the given family.
func (l *Library) Len(f Family) int { return len(l.tags[f]) }

// Adaptor returns the i'th tag of the given family.
func (l *Library) Adaptor(f Family, i int) string { return l.tags[f][i] }

// Label returns the display name of the i'th tag of the family: a 1-based
// number for P1, a letter for P2.
func Label(f Family, i int) string {
	if f == P1 {
		return P1Label(i)
	}
	return P2Label(i)
}

// P1Label returns the 1-based number of the i'th P1 tag.
func P1Label(i int) string { return strconv.Itoa(i + 1) }

// P2Label returns the letter of the i'th P2 tag: "A" through "Z", then "AA",
// "AB", and so on.
func P2Label(i int) string {
	var b []byte
	for i++; i > 0; i = (i - 1) / 26 {
		b = append([]byte{byte('A' + (i-1)%26)}, b...)
	}
	return string(b)
}

// Log prints the library in the order it will be matched.
func (l *Library) Log() {
	for f := P1; f <= P2; f++ {
		log.Printf("%v adaptors:", f)
		for i, tag := range l.Tags(f) {
			log.Printf("%s. %s", Label(f, i), tag)
		}
	}
}
