// Package ignore suppresses resolved messages matching user-supplied
// regular expressions, loaded from a plain-text pattern file.
package ignore

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/arthur-debert/lootlint/pkg/logging"
	"github.com/arthur-debert/lootlint/pkg/resolver"
)

// LoadPatterns reads an ignore file: one regular expression per line,
// blank lines and '#' comments skipped. Patterns are case-sensitive
// and unanchored. An invalid pattern fails the load; a filter never
// runs with a half-working pattern set.
func LoadPatterns(path string) ([]*regexp.Regexp, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIgnoreRead, "cannot read ignore file %s", path).
			WithDetail("path", path)
	}
	defer f.Close()
	return ParsePatterns(f)
}

// ParsePatterns compiles the patterns in r.
func ParsePatterns(r io.Reader) ([]*regexp.Regexp, error) {
	var patterns []*regexp.Regexp
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		re, err := regexp.Compile(line)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrIgnorePattern, "invalid ignore pattern on line %d", lineNo).
				WithDetail("pattern", line).
				WithDetail("line", lineNo)
		}
		patterns = append(patterns, re)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrIgnoreRead, "cannot read ignore patterns")
	}
	return patterns, nil
}

// Filter drops messages whose text matches any pattern, keeping the
// rest in their original order.
func Filter(msgs []resolver.ResolvedMessage, patterns []*regexp.Regexp) []resolver.ResolvedMessage {
	if len(patterns) == 0 {
		return msgs
	}
	logger := logging.GetLogger("ignore")

	kept := make([]resolver.ResolvedMessage, 0, len(msgs))
	dropped := 0
	for _, msg := range msgs {
		if matchesAny(msg.Text, patterns) {
			dropped++
			continue
		}
		kept = append(kept, msg)
	}
	if dropped > 0 {
		logger.Debug().Int("dropped", dropped).Msg("suppressed ignored messages")
	}
	return kept
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
