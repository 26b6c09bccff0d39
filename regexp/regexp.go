package regexp

import (
	"fmt"
	stdlib "regexp"

	gore2 "github.com/wasilibs/go-re2"
)

// engine is an internal interface satisfied by both *stdlib.Regexp and *gore2.Regexp.
type engine interface {
	MatchString(s string) bool
	FindStringIndex(s string) []int
	FindAllStringIndex(s string, n int) [][]int
	FindAllStringSubmatchIndex(s string, n int) [][]int
	ReplaceAllStringFunc(src string, repl func(string) string) string
	NumSubexp() int
	SubexpNames() []string
	String() string
}

// Regexp wraps a compiled regular expression. It is a concrete struct
// so that *Regexp works as a normal pointer (not pointer-to-interface).
type Regexp struct{ e engine }

func (r *Regexp) MatchString(s string) bool {
	return r.e.MatchString(s)
}
func (r *Regexp) FindStringIndex(s string) []int {
	return r.e.FindStringIndex(s)
}
func (r *Regexp) FindAllStringIndex(s string, n int) [][]int {
	return r.e.FindAllStringIndex(s, n)
}

// FindAllStringSubmatchIndex returns, per match, index pairs for the whole
// match followed by every group. Unmatched groups are reported as -1.
func (r *Regexp) FindAllStringSubmatchIndex(s string, n int) [][]int {
	return r.e.FindAllStringSubmatchIndex(s, n)
}
func (r *Regexp) ReplaceAllStringFunc(src string, repl func(string) string) string {
	return r.e.ReplaceAllStringFunc(src, repl)
}
func (r *Regexp) NumSubexp() int {
	return r.e.NumSubexp()
}
func (r *Regexp) SubexpNames() []string {
	return r.e.SubexpNames()
}
func (r *Regexp) String() string {
	return r.e.String()
}

var currentEngine = "stdlib"

// Version returns the name of the active regex engine.
func Version() string { return currentEngine }

// SetEngine selects the regex engine used by subsequent Compile calls.
func SetEngine(name string) error {
	switch name {
	case "stdlib", "re2":
		currentEngine = name
		return nil
	default:
		return fmt.Errorf("unknown regex engine %q (expected stdlib or re2)", name)
	}
}

// Compile compiles a regular expression using the currently selected engine.
func Compile(str string) (*Regexp, error) {
	var (
		impl engine
		err  error
	)
	if currentEngine == "re2" {
		impl, err = gore2.Compile(str)
	} else {
		impl, err = stdlib.Compile(str)
	}
	if err != nil {
		return nil, err
	}
	return &Regexp{e: impl}, nil
}

// MustCompile is like Compile but panics if the expression cannot be parsed.
func MustCompile(str string) *Regexp {
	var impl engine
	if currentEngine == "re2" {
		impl = gore2.MustCompile(str)
	} else {
		impl = stdlib.MustCompile(str)
	}
	return &Regexp{e: impl}
}
