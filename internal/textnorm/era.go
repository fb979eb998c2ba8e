package textnorm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// era maps a Japanese era to the Gregorian year before its first year.
type era struct {
	names []string
	epoch int
}

var (
	eraMeiji  = era{names: []string{"明治", "M"}, epoch: 1867}
	eraTaisho = era{names: []string{"大正", "T"}, epoch: 1911}
	eraShowa  = era{names: []string{"昭和", "S"}, epoch: 1925}
	eraHeisei = era{names: []string{"平成", "H"}, epoch: 1988}
	eraReiwa  = era{names: []string{"令和", "R"}, epoch: 2018}
)

var eraByName = func() map[string]era {
	m := make(map[string]era)
	for _, e := range []era{eraMeiji, eraTaisho, eraShowa, eraHeisei, eraReiwa} {
		for _, name := range e.names {
			m[name] = e
		}
	}
	return m
}()

const eraNames = `(明治|大正|昭和|平成|令和|M|T|S|H|R)`

var (
	reEraRange  = regexp.MustCompile(eraNames + `(\d{1,2}|元)\s*～\s*(\d{1,2})`)
	reEraSingle = regexp.MustCompile(eraNames + `(\d{1,2}|元)`)
)

// gregorian converts an era-relative year ("元" is year 1).
func (e era) gregorian(year string) int {
	if year == "元" {
		return e.epoch + 1
	}
	n, _ := strconv.Atoi(year)
	return e.epoch + n
}

func convertEraRanges(s string) string {
	return replaceEra(s, reEraRange, func(s string, m []int) (string, int) {
		e := eraByName[s[m[2]:m[3]]]
		return strconv.Itoa(e.gregorian(s[m[4]:m[5]])) + "～" + strconv.Itoa(e.gregorian(s[m[6]:m[7]])), m[1]
	})
}

func convertEraSingles(s string) string {
	return replaceEra(s, reEraSingle, func(s string, m []int) (string, int) {
		e := eraByName[s[m[2]:m[3]]]
		end := m[1]
		// A cell holding only an era year keeps no trailing 年.
		if strings.TrimRightFunc(s[end:], unicode.IsSpace) == "年" {
			end = len(s)
		}
		return strconv.Itoa(e.gregorian(s[m[4]:m[5]])), end
	})
}

// replaceEra rewrites every acceptable match of re in s. convert returns the
// replacement text and the byte offset where copying resumes.
//
// A match is rejected when a letter abbreviation is glued to a preceding
// ASCII letter (PM2.5) or when its last number runs into another digit.
func replaceEra(s string, re *regexp.Regexp, convert func(s string, m []int) (string, int)) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		if m[0] < last || !acceptEraMatch(s, m) {
			continue
		}
		repl, end := convert(s, m)
		b.WriteString(s[last:m[0]])
		b.WriteString(repl)
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

func acceptEraMatch(s string, m []int) bool {
	name := s[m[2]:m[3]]
	if len(name) == 1 && m[0] > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:m[0]])
		if isASCIILetter(prev) {
			return false
		}
	}
	if m[1] < len(s) && isDigit(s[m[1]]) {
		return false
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
