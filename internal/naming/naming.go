// Package naming extracts a best-effort movie title and release year from
// release-named media filenames. Parsing is pure and total: any input,
// however mangled, yields a non-empty title guess.
package naming

import (
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Guess is the parser's best-effort extraction prior to any provider
// confirmation. Title is never empty. Year is 0 when no confident year
// was detected.
type Guess struct {
	Title string
	Year  int
}

// String renders the guess the way it is shown to users: "Title (Year)".
func (g Guess) String() string {
	if g.Year > 0 {
		return g.Title + " (" + strconv.Itoa(g.Year) + ")"
	}
	return g.Title
}

// ErrEmptyTitle is returned when a manually entered title contains no
// usable text.
var ErrEmptyTitle = errors.New("title is empty")

var (
	extensionRegex = regexp.MustCompile(
		`(?i)\.(mkv|mp4|avi|mov|wmv|flv|webm|m4v|mpg|mpeg|m2ts|ts|vob|3gp|f4v|ogv)$`)
	archiveRegex     = regexp.MustCompile(`(?i)\.(zip|rar|7z|gz|bz2|xz|tar|iso)(\.\d{3,4})?$`)
	channelPrefixRe  = regexp.MustCompile(`^[@#]\w+?[-_\s]+`)
	groupPrefixRe    = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)
	tokenYearRe      = regexp.MustCompile(`^(19|20)\d{2}$`)
	parenYearRe      = regexp.MustCompile(`^\((\d{4})\)$`)
	separatorRe      = regexp.MustCompile(`[._\-\s]+`)
	audioChannelsRe  = regexp.MustCompile(`[2357]\.1\b`)
	collapseSpacesRe = regexp.MustCompile(`\s+`)
)

// Parser turns filenames into guesses using a configurable noise-token
// vocabulary.
type Parser struct {
	noise []*regexp.Regexp
}

// NewParser builds a Parser with the built-in noise vocabulary plus any
// extra token rules (regular expressions matched case-insensitively
// against whole tokens).
func NewParser(extraRules ...string) (*Parser, error) {
	noise, err := compileNoiseRules(extraRules)
	if err != nil {
		return nil, err
	}
	return &Parser{noise: noise}, nil
}

var defaultParser = func() *Parser {
	p, err := NewParser()
	if err != nil {
		panic(err) // built-in rules are compile-checked by tests
	}
	return p
}()

// DefaultParser returns the shared parser with the built-in noise
// vocabulary.
func DefaultParser() *Parser {
	return defaultParser
}

// Parse parses filename with the default noise vocabulary.
func Parse(filename string) Guess {
	return defaultParser.Parse(filename)
}

// Parse extracts a title and year guess from a release-named filename.
// It never fails: when nothing usable survives cleaning, the minimally
// cleaned filename stem is used as the title.
func (p *Parser) Parse(filename string) Guess {
	base := filepath.Base(filename)
	stem := stripExtension(base)

	working := groupPrefixRe.ReplaceAllString(stem, "")
	working = channelPrefixRe.ReplaceAllString(working, "")
	// Audio channel layouts like 5.1 span a separator; drop them before
	// tokenizing so they cannot leak digit tokens into the title.
	working = audioChannelsRe.ReplaceAllString(working, " ")

	tokens := splitTokens(working)

	year := 0
	titleTokens := tokens
	for i, tok := range tokens {
		if y, ok := yearToken(tok); ok {
			year = y
			titleTokens = tokens[:i]
			break
		}
	}

	kept := titleTokens[:0:0]
	for _, tok := range titleTokens {
		if !p.isNoise(tok) {
			kept = append(kept, tok)
		}
	}

	title := strings.Join(kept, " ")
	title = strings.Trim(title, " .,_-()[]{}|~")
	title = collapseSpacesRe.ReplaceAllString(title, " ")

	if title == "" {
		title = cleanStem(stem)
	}
	if title == "" {
		title = "unknown"
	}

	return Guess{Title: title, Year: year}
}

// ParseManualTitle interprets free-text title input from a user. A year
// token anywhere in the text is detected the same way Parse detects year
// boundaries and removed from the title. Input with no usable text yields
// ErrEmptyTitle. A bare year like "2012" is kept as the title, since
// movies titled after years exist.
func ParseManualTitle(text string) (Guess, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Guess{}, ErrEmptyTitle
	}

	fields := strings.Fields(trimmed)
	year := 0
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if year == 0 {
			if y, ok := yearToken(f); ok {
				year = y
				continue
			}
		}
		kept = append(kept, f)
	}

	title := strings.Join(kept, " ")
	if title == "" {
		return Guess{Title: trimmed}, nil
	}
	return Guess{Title: title, Year: year}, nil
}

// IsVideoFilename reports whether the filename carries a supported video
// container extension.
func IsVideoFilename(filename string) bool {
	return extensionRegex.MatchString(filename) && !archiveRegex.MatchString(filename)
}

// IsArchiveFilename reports whether the filename is an archive or a split
// archive part (e.g. movie.rar, movie.zip.001).
func IsArchiveFilename(filename string) bool {
	return archiveRegex.MatchString(filename)
}

func (p *Parser) isNoise(token string) bool {
	for _, re := range p.noise {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}

func yearToken(tok string) (int, bool) {
	if tokenYearRe.MatchString(tok) {
		y, _ := strconv.Atoi(tok)
		return y, true
	}
	if m := parenYearRe.FindStringSubmatch(tok); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y, true
	}
	return 0, false
}

func stripExtension(name string) string {
	name = archiveRegex.ReplaceAllString(name, "")
	return extensionRegex.ReplaceAllString(name, "")
}

func splitTokens(s string) []string {
	parts := separatorRe.Split(s, -1)
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// cleanStem is the minimal-cleaning fallback: separators normalized to
// single spaces, nothing else removed.
func cleanStem(stem string) string {
	s := separatorRe.ReplaceAllString(stem, " ")
	return strings.TrimSpace(s)
}
