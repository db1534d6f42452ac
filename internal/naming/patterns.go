package naming

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// defaultNoiseRules is the built-in noise-token vocabulary. Each entry is
// matched case-insensitively against a whole token; matching tokens carry
// no title information and are dropped. The vocabulary of release-naming
// conventions is open-ended, so callers can extend it via NewParser or a
// rules file without touching the parse flow.
var defaultNoiseRules = []string{
	// Resolution markers
	`\d{3,4}[pi]`,
	`(4k|8k|2k|uhd|fhd|sd|hq|lq)`,
	`hd`,

	// Source types
	`(bluray|blu-ray|bdrip|brrip|bd)`,
	`(web-?dl|web-?rip|web|dl|rip)`,
	`(hdrip|dvdrip|dvdscr|dvd|hdtv|pdtv|dsr)`,
	`(camrip|hdcam|cam|hdts|ts|tc|scr|r5|remux)`,

	// Video codecs and bit depth
	`([xh]\.?26[456]|hevc|avc|av1|xvid|divx|vp9|mpeg2)`,
	`(8|10|12)-?bit`,

	// Audio codecs and channel layouts
	`(aac|e?-?ac3|dts(-?(hd|x|es|ma))?|truehd|atmos|flac|pcm|opus|mp3)`,
	`dd[p+]?\d*`,
	`(stereo|mono)`,
	`(dual|multi|audio)`,

	// HDR formats
	`(hdr10\+?|hdr10plus|hdr|sdr|dovi|dv|hlg)`,

	// Editions and release tags
	`(remastered|imax|extended|uncut|unrated|theatrical|criterion)`,
	`directors?-?cut`,
	`(proper|repack|rerip|internal|limited|hybrid|3d)`,
	`v\d+`,

	// Streaming platforms
	`(netflix|nf|amzn|amazon|prime|dsnp|hmax|hulu|atvp|pcok|pmtp)`,
	`(zee5|sonyliv|voot|hoichoi|jiocinema|itunes)`,

	// Known release groups
	`(yify|yts|rarbg|psa|sparks|fgt|fleet|evo|galaxyrg|cmrg|tommy)`,

	// Language tags
	`(hindi|tamil|telugu|malayalam|kannada|bengali|marathi|punjabi|gujarati)`,
	`(english|spanish|french|german|italian|russian|japanese|korean|chinese)`,

	// Subtitle markers
	`(esubs?|msubs?|subs?|subtitles?|subbed|sdh|cc)`,

	// Parenthesized/bracketed year duplicates and leftover bracket content
	`\(\d{4}\)`,
	`\[\d{4}\]`,
	`\[.*\]`,
}

// compileNoiseRules anchors each rule to a whole token and compiles it.
func compileNoiseRules(extra []string) ([]*regexp.Regexp, error) {
	rules := make([]*regexp.Regexp, 0, len(defaultNoiseRules)+len(extra))
	for _, r := range append(append([]string{}, defaultNoiseRules...), extra...) {
		re, err := regexp.Compile(`(?i)^(?:` + r + `)$`)
		if err != nil {
			return nil, fmt.Errorf("invalid noise rule %q: %w", r, err)
		}
		rules = append(rules, re)
	}
	return rules, nil
}

// LoadRulesFile reads additional noise rules from a file, one pattern per
// line. Blank lines and lines starting with # are skipped. A missing file
// is not an error; it yields no extra rules.
func LoadRulesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening rules file: %w", err)
	}
	defer f.Close()

	var rules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return rules, nil
}
