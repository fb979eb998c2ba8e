// Package textnorm canonicalizes the Japanese text found in review sheet
// cells and headers before any header decoding takes place.
//
// Rules are applied in a fixed order:
//
//  1. Circled list markers (① to ⑳) become "N. ".
//  2. Unicode NFKC compatibility normalization.
//  3. Tilde variants, with surrounding whitespace, collapse to "～".
//  4. Era years (平成30, H30, 令和元) and era ranges become Gregorian years.
//  5. Bare "N年度" with a one or two digit N is resolved to Reiwa or Heisei.
//  6. Hyphen-like glyphs are unified to "-", except between katakana
//     (prolonged sound mark), inside protected phrases, and between two
//     Japanese characters (deleted as a line-wrap artifact).
//
// Normalize is pure and idempotent.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultReiwaThreshold is the largest bare "N年度" value read as a Reiwa year.
const DefaultReiwaThreshold = 5

// Normalizer holds the tunable parts of the rule set.
// The zero value is not usable; use New or Default.
type Normalizer struct {
	// ReiwaThreshold decides the era of a bare "N年度": N <= threshold is
	// Reiwa, anything larger is Heisei.
	ReiwaThreshold int

	corrections []rewrite
	protected   []*regexp.Regexp
}

// rewrite replaces a known misspelling before protection applies.
type rewrite struct {
	pattern *regexp.Regexp
	to      string
}

// protectedPhrases survive hyphen processing verbatim. A "-" stands for any
// hyphen-like glyph.
var protectedPhrases = []string{"リスト-グループ"}

// misspellings are corrected before protectedPhrases are shielded.
var misspellings = [][2]string{
	{"リスト-グル-プ", "リスト-グループ"},
}

// New returns a Normalizer with the given Reiwa threshold and the standard
// protected phrase list. A non-positive threshold selects the default.
func New(reiwaThreshold int) *Normalizer {
	if reiwaThreshold <= 0 {
		reiwaThreshold = DefaultReiwaThreshold
	}
	n := &Normalizer{ReiwaThreshold: reiwaThreshold}
	for _, m := range misspellings {
		n.corrections = append(n.corrections, rewrite{pattern: anyHyphenPattern(m[0]), to: m[1]})
	}
	for _, p := range protectedPhrases {
		n.protected = append(n.protected, anyHyphenPattern(p))
	}
	return n
}

var defaultNormalizer = New(DefaultReiwaThreshold)

// Default returns the shared Normalizer with standard settings.
func Default() *Normalizer { return defaultNormalizer }

// Normalize applies the standard rule set to s.
func Normalize(s string) string { return defaultNormalizer.Normalize(s) }

// maxPasses bounds the rule loop in Normalize.
const maxPasses = 8

// Normalize applies every rule to s in order. Empty input is returned as is.
//
// Dropping a line-wrap hyphen can join the halves of an era expression
// ("平-成30年"), so the rules are repeated until the text stops changing.
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return s
	}
	for range maxPasses {
		next := n.apply(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func (n *Normalizer) apply(s string) string {
	s = replaceListMarkers(s)
	s = norm.NFKC.String(s)
	s = reTilde.ReplaceAllString(s, "～")
	s = convertEraRanges(s)
	s = convertEraSingles(s)
	s = n.convertBareFiscalYears(s)
	s = n.processHyphens(s)

	return strings.TrimSpace(s)
}

// replaceListMarkers rewrites ① through ⑳ as "1. " through "20. ".
func replaceListMarkers(s string) string {
	if !strings.ContainsFunc(s, isCircledNumber) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if isCircledNumber(r) {
			b.WriteString(strconv.Itoa(int(r-'①') + 1))
			b.WriteString(". ")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isCircledNumber(r rune) bool { return r >= '①' && r <= '⑳' }

var reTilde = regexp.MustCompile(`\s*[~～〜]\s*`)

// Bare fiscal years. Digit runs longer than two are left alone, which keeps
// Gregorian years such as 2019年度 untouched.
var reFiscalYear = regexp.MustCompile(`(\d+)年度`)

func (n *Normalizer) convertBareFiscalYears(s string) string {
	if !strings.Contains(s, "年度") {
		return s
	}
	return reFiscalYear.ReplaceAllStringFunc(s, func(m string) string {
		digits := strings.TrimSuffix(m, "年度")
		if len(digits) > 2 {
			return m
		}
		year, err := strconv.Atoi(digits)
		if err != nil {
			return m
		}
		return strconv.Itoa(n.resolveBareYear(year)) + "年度"
	})
}

func (n *Normalizer) resolveBareYear(year int) int {
	if year <= n.ReiwaThreshold {
		return eraReiwa.epoch + year
	}
	return eraHeisei.epoch + year
}

// hyphenLike lists every glyph unified to ASCII "-".
func hyphenLike(r rune) bool {
	switch r {
	case '\u002D', '\u2010', '\u2011', '\u2012', '\u2013', '\u2014', '\u2015', '\u2212', '\uFF0D':
		return true
	}
	return false
}

const hyphenClass = `[\x{002D}\x{2010}\x{2011}\x{2012}\x{2013}\x{2014}\x{2015}\x{2212}\x{FF0D}]`

func isKatakana(r rune) bool { return r >= 'ァ' && r <= 'ヴ' }

func isJapanese(r rune) bool {
	return (r >= 'ぁ' && r <= 'ん') || isKatakana(r) || (r >= '一' && r <= '龠')
}

func (n *Normalizer) processHyphens(s string) string {
	if !strings.ContainsFunc(s, hyphenLike) {
		return s
	}

	for _, c := range n.corrections {
		s = c.pattern.ReplaceAllLiteralString(s, c.to)
	}

	src := []rune(s)
	shielded := n.shield(s, len(src))

	// Shielded runes are copied verbatim and count as neither katakana nor
	// Japanese for their neighbours.
	kana := func(i int) bool { return !shielded[i] && isKatakana(src[i]) }
	japanese := func(i int) bool { return !shielded[i] && isJapanese(src[i]) }

	// Katakana on both sides: prolonged sound mark.
	unified := make([]rune, len(src))
	for i, r := range src {
		switch {
		case shielded[i] || !hyphenLike(r):
			unified[i] = r
		case i > 0 && i+1 < len(src) && kana(i-1) && kana(i+1):
			unified[i] = 'ー'
		default:
			unified[i] = '-'
		}
	}

	// Japanese on both sides: line-wrap artifact, dropped.
	out := make([]rune, 0, len(unified))
	for i, r := range unified {
		if r == '-' && !shielded[i] && i > 0 && i+1 < len(unified) && japanese(i-1) && japanese(i+1) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// shield marks, by rune index, the runes of s that belong to a protected
// phrase.
func (n *Normalizer) shield(s string, runes int) []bool {
	shielded := make([]bool, runes)
	var spans [][]int
	for _, re := range n.protected {
		spans = append(spans, re.FindAllStringIndex(s, -1)...)
	}
	if len(spans) == 0 {
		return shielded
	}

	i := 0
	for off := range s {
		for _, sp := range spans {
			if off >= sp[0] && off < sp[1] {
				shielded[i] = true
				break
			}
		}
		i++
	}
	return shielded
}

// anyHyphenPattern compiles phrase so that each "-" matches any hyphen-like
// glyph.
func anyHyphenPattern(phrase string) *regexp.Regexp {
	parts := strings.Split(phrase, "-")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(strings.Join(parts, hyphenClass))
}
