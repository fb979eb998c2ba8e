package lookup

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YearToken ties a filename fragment to the review year of its workbook.
type YearToken struct {
	Token string `yaml:"token"`
	Year  int    `yaml:"year"`
}

// YearMap resolves source filenames to review years.
type YearMap struct {
	tokens []YearToken
}

// DefaultYearTokens covers the published database releases.
var DefaultYearTokens = []YearToken{
	{"database240918", 2023},
	{"database240502", 2022},
	{"database220524", 2021},
	{"database_220427", 2020},
	{"database2019_220427", 2019},
	{"database2018_220427", 2018},
	{"database2017", 2017},
	{"database2016", 2016},
	{"database2015", 2015},
	{"database2014", 2014},
}

// NewYearMap builds a YearMap. Longer tokens are tried first so a token that
// is a substring of another never shadows it.
func NewYearMap(tokens []YearToken) *YearMap {
	sorted := append([]YearToken(nil), tokens...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Token) > len(sorted[j].Token)
	})
	return &YearMap{tokens: sorted}
}

// DefaultYearMap returns a YearMap over DefaultYearTokens.
func DefaultYearMap() *YearMap { return NewYearMap(DefaultYearTokens) }

// Resolve returns the review year of the first token contained in filename.
func (m *YearMap) Resolve(filename string) (int, bool) {
	for _, t := range m.tokens {
		if strings.Contains(filename, t.Token) {
			return t.Year, true
		}
	}
	return 0, false
}

// Tokens returns the tokens in match order.
func (m *YearMap) Tokens() []YearToken {
	return append([]YearToken(nil), m.tokens...)
}

// yearFile is the on-disk layout of a year map override.
type yearFile struct {
	Replace bool        `yaml:"replace"`
	Years   []YearToken `yaml:"years"`
}

// LoadYearMap reads a YAML year map from path. Entries extend the default
// tokens unless the file sets replace: true. An empty path returns the
// default map.
//
//	replace: false
//	years:
//	  - token: database250701
//	    year: 2024
func LoadYearMap(path string) (*YearMap, error) {
	if path == "" {
		return DefaultYearMap(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read year map: %w", err)
	}

	var f yearFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse year map %s: %w", path, err)
	}

	for i, t := range f.Years {
		if strings.TrimSpace(t.Token) == "" {
			return nil, fmt.Errorf("year map %s: entry %d has empty token", path, i)
		}
		if t.Year <= 0 {
			return nil, fmt.Errorf("year map %s: token %q has invalid year %d", path, t.Token, t.Year)
		}
	}

	if f.Replace {
		return NewYearMap(f.Years), nil
	}

	// File entries win over defaults with the same token.
	merged := append([]YearToken(nil), f.Years...)
	overridden := make(map[string]bool, len(f.Years))
	for _, t := range f.Years {
		overridden[t.Token] = true
	}
	for _, t := range DefaultYearTokens {
		if !overridden[t.Token] {
			merged = append(merged, t)
		}
	}
	return NewYearMap(merged), nil
}
