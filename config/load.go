package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/attunehq/nudge/logging"
	"github.com/attunehq/nudge/version"
)

const (
	// ProjectRulesFile is the single-file project rule location.
	ProjectRulesFile = ".nudge.yaml"

	// ProjectRulesDir holds any number of project rule files.
	ProjectRulesDir = ".nudge"

	// UserRulesFile is the per-user rule file under UserConfigDir.
	UserRulesFile = "rules.yaml"
)

// ErrUnsupportedVersion is returned for rule files with an unknown version.
var ErrUnsupportedVersion = errors.New("unsupported version")

// LoadedFile is the compiled content of one rule file.
type LoadedFile struct {
	Path  string
	Rules []CompiledRule
}

// Parse decodes and checks one rule file. Unknown keys are errors.
func Parse(data []byte) (RuleFile, error) {
	var file RuleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return RuleFile{}, fmt.Errorf("empty rule file")
		}
		return RuleFile{}, err
	}
	if err := file.Check(); err != nil {
		return RuleFile{}, err
	}
	return file, nil
}

// CompileFile compiles every rule of a parsed file. A single bad rule
// rejects the whole file.
func CompileFile(path string, file RuleFile, opts Options) (LoadedFile, error) {
	checkMinVersion(path, file.MinVersion)

	loaded := LoadedFile{Path: path, Rules: make([]CompiledRule, 0, len(file.Rules))}
	for _, raw := range file.Rules {
		rule, err := Compile(raw, opts)
		if err != nil {
			return LoadedFile{}, err
		}
		rule.Source = path
		loaded.Rules = append(loaded.Rules, rule)
	}
	return loaded, nil
}

// LoadFile reads, parses and compiles one rule file.
func LoadFile(path string, opts Options) (LoadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadedFile{}, err
	}
	file, err := Parse(data)
	if err != nil {
		return LoadedFile{}, fmt.Errorf("%s: %w", path, err)
	}
	loaded, err := CompileFile(path, file, opts)
	if err != nil {
		return LoadedFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}

// Sources lists candidate rule files in load order: the user rules file,
// the project's .nudge.yaml, then every YAML file under .nudge/ in lexical
// order. Paths that do not exist are omitted.
func Sources(cwd string) []string {
	var paths []string

	if dir := UserConfigDir(); dir != "" {
		paths = appendIfFile(paths, filepath.Join(dir, UserRulesFile))
	}
	if cwd == "" {
		return paths
	}
	paths = appendIfFile(paths, filepath.Join(cwd, ProjectRulesFile))

	var nested []string
	root := filepath.Join(cwd, ProjectRulesDir)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root {
				logging.Debug().Err(err).Str("path", path).Msg("skipping unreadable rule path")
			}
			return nil
		}
		if !d.IsDir() && isYAML(path) {
			nested = append(nested, path)
		}
		return nil
	})
	slices.Sort(nested)
	return append(paths, nested...)
}

func appendIfFile(paths []string, path string) []string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return append(paths, path)
	}
	return paths
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadAll loads every rule source for cwd. A file that fails to load is
// skipped with a warning so one broken file cannot disable the rest.
func LoadAll(cwd string, opts Options) []CompiledRule {
	return LoadPaths(Sources(cwd), opts)
}

// LoadPaths is LoadAll over an explicit list of files.
func LoadPaths(paths []string, opts Options) []CompiledRule {
	var rules []CompiledRule
	for _, path := range paths {
		loaded, err := LoadFile(path, opts)
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("skipping rule file")
			continue
		}
		logging.Debug().Str("path", path).Int("rules", len(loaded.Rules)).Msg("loaded rule file")
		rules = append(rules, loaded.Rules...)
	}
	warnDuplicates(rules)
	return rules
}

// LoadAllStrict loads every rule source for cwd and fails on the first bad
// file. It backs `nudge validate`.
func LoadAllStrict(cwd string, opts Options) ([]LoadedFile, error) {
	return LoadPathsStrict(Sources(cwd), opts)
}

// LoadPathsStrict is LoadAllStrict over an explicit list of files. On
// error the files loaded before the bad one are still returned.
func LoadPathsStrict(paths []string, opts Options) ([]LoadedFile, error) {
	files := make([]LoadedFile, 0, len(paths))
	var all []CompiledRule
	for _, path := range paths {
		loaded, err := LoadFile(path, opts)
		if err != nil {
			return files, err
		}
		files = append(files, loaded)
		all = append(all, loaded.Rules...)
	}
	warnDuplicates(all)
	return files, nil
}

// warnDuplicates logs rule names declared more than once. Both copies stay
// active.
func warnDuplicates(rules []CompiledRule) {
	seen := make(map[string]string, len(rules))
	for _, r := range rules {
		if first, ok := seen[r.Name]; ok {
			logging.Warn().
				Str("rule", r.Name).
				Str("first", first).
				Str("second", r.Source).
				Msg("duplicate rule name")
			continue
		}
		seen[r.Name] = r.Source
	}
}

func checkMinVersion(path, minVersion string) {
	if minVersion == "" {
		return
	}
	want, err := goversion.NewVersion(minVersion)
	if err != nil {
		logging.Warn().Str("path", path).Str("min_version", minVersion).Msg("invalid min_version")
		return
	}
	have, err := goversion.NewVersion(version.Version)
	if err != nil {
		// development builds carry no comparable version
		return
	}
	if have.LessThan(want) {
		logging.Warn().
			Str("path", path).
			Str("min_version", minVersion).
			Str("version", version.Version).
			Msg("rule file expects a newer nudge, some rules may not behave as written")
	}
}
