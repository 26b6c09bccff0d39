package pattern

import (
	"fmt"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies a grammar usable by syntax tree matchers.
type Language string

const (
	Bash       Language = "bash"
	C          Language = "c"
	Cpp        Language = "cpp"
	CSharp     Language = "csharp"
	Go         Language = "go"
	Java       Language = "java"
	JavaScript Language = "javascript"
	Kotlin     Language = "kotlin"
	Python     Language = "python"
	Ruby       Language = "ruby"
	Rust       Language = "rust"
	TSX        Language = "tsx"
	TypeScript Language = "typescript"
)

var grammars = map[Language]func() *sitter.Language{
	Bash:       bash.GetLanguage,
	C:          c.GetLanguage,
	Cpp:        cpp.GetLanguage,
	CSharp:     csharp.GetLanguage,
	Go:         golang.GetLanguage,
	Java:       java.GetLanguage,
	JavaScript: javascript.GetLanguage,
	Kotlin:     kotlin.GetLanguage,
	Python:     python.GetLanguage,
	Ruby:       ruby.GetLanguage,
	Rust:       rust.GetLanguage,
	TSX:        tsx.GetLanguage,
	TypeScript: typescript.GetLanguage,
}

var aliases = map[string]Language{
	"golang": Go,
	"c#":     CSharp,
	"cs":     CSharp,
	"js":     JavaScript,
	"ts":     TypeScript,
	"py":     Python,
	"rs":     Rust,
	"sh":     Bash,
	"c++":    Cpp,
}

// ParseLanguage resolves a language name as written in rule files.
func ParseLanguage(s string) (Language, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if l, ok := aliases[name]; ok {
		return l, nil
	}
	if _, ok := grammars[Language(name)]; ok {
		return Language(name), nil
	}
	return "", fmt.Errorf("unsupported language %q (supported: %s)", s, strings.Join(SupportedLanguages(), ", "))
}

// SupportedLanguages lists every language name in sorted order.
func SupportedLanguages() []string {
	names := make([]string, 0, len(grammars))
	for l := range grammars {
		names = append(names, string(l))
	}
	slices.Sort(names)
	return names
}

// Grammar returns the tree-sitter grammar for l.
func (l Language) Grammar() *sitter.Language {
	if get, ok := grammars[l]; ok {
		return get()
	}
	return nil
}

func (l Language) String() string {
	return string(l)
}
