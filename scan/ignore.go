package scan

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/logging"
)

// IgnoreFileName is read from the checked directory.
const IgnoreFileName = ".nudgeignore"

// Ignore is a set of issue keys to suppress. Keys are either the short
// `file:rule:line` form or a full fingerprint.
type Ignore map[string]struct{}

// Contains reports whether the issue is suppressed.
func (ig Ignore) Contains(issue nudge.Issue) bool {
	if _, ok := ig[issue.IgnoreKey()]; ok {
		return true
	}
	_, ok := ig[issue.Fingerprint]
	return ok
}

// LoadIgnoreFile loads a .nudgeignore file. The file format supports:
// - Comments starting with #
// - Blank lines (ignored)
// - Short keys: file:rule:line
// - Fingerprints as printed in reports: file!rule!hash#L1-1#C1-5
func LoadIgnoreFile(path string) (Ignore, error) {
	ignore := make(Ignore)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	replacer := strings.NewReplacer("\\", "/")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip blank lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "!") {
			ignore[replacer.Replace(line)] = struct{}{}
			continue
		}

		// Split from the right so paths containing ':' survive.
		rest, lineNo, ok := cutLast(line, ":")
		if !ok {
			logging.Warn().Str("entry", line).Msg("invalid ignore file entry")
			continue
		}
		file, rule, ok := cutLast(rest, ":")
		if !ok || file == "" || rule == "" {
			logging.Warn().Str("entry", line).Msg("invalid ignore file entry")
			continue
		}
		if _, err := strconv.Atoi(lineNo); err != nil {
			logging.Warn().Str("entry", line).Msg("invalid ignore file entry: line is not a number")
			continue
		}
		ignore[replacer.Replace(file)+":"+rule+":"+lineNo] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ignore, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// LoadIgnoreFiles loads ignorePath when it is a file, and the
// .nudgeignore inside ignorePath and sourcePath when they are directories.
func LoadIgnoreFiles(ignorePath string, sourcePath string) Ignore {
	ignore := make(Ignore)

	tryLoad := func(path string) {
		if _, err := os.Stat(path); err == nil {
			logging.Debug().Str("path", path).Msg("loading ignore file")
			if loaded, err := LoadIgnoreFile(path); err == nil {
				for k, v := range loaded {
					ignore[k] = v
				}
			} else {
				logging.Warn().Err(err).Str("path", path).Msg("failed to load ignore file")
			}
		}
	}

	if info, err := os.Stat(ignorePath); err == nil && !info.IsDir() {
		tryLoad(ignorePath)
	} else {
		tryLoad(filepath.Join(ignorePath, IgnoreFileName))
	}

	if sourcePath != ignorePath {
		tryLoad(filepath.Join(sourcePath, IgnoreFileName))
	}

	return ignore
}
