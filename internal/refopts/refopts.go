// Package refopts wires reference-selection command-line flags for
// the gitjfs CLI. It is a direct simplification of the teacher's
// RefGroupBuilder: the teacher built a whole tree of named ref groups
// for per-group size statistics, a feature this tool has no
// equivalent of (fs.FileSystem.Refs lists every ref; it doesn't
// tally anything per group), so this keeps only the include/exclude
// filter plumbing, built the same way with pflag.Var and a custom
// flag.Value.
package refopts

import (
	"regexp"
	"strings"

	"github.com/spf13/pflag"
)

// Filter decides whether a ref name passes the filters accumulated
// from the command line. The zero Filter accepts everything.
type Filter struct {
	rules []rule
}

type rule struct {
	include bool
	match   func(name string) bool
}

// Allows reports whether name survives every accumulated rule: the
// last matching rule wins, the same last-match-wins semantics the
// teacher's git.ReferenceFilter uses.
func (f *Filter) Allows(name string) bool {
	allow := true
	for _, r := range f.rules {
		if r.match(name) {
			allow = r.include
		}
	}
	return allow
}

func prefixMatch(prefix string) func(string) bool {
	return func(name string) bool { return strings.HasPrefix(name, prefix) }
}

func regexMatch(re *regexp.Regexp) func(string) bool {
	return func(name string) bool { return re.MatchString(name) }
}

// filterValue is a pflag.Value that appends one include/exclude rule
// to a Filter each time the flag is set, so --include can be repeated
// on one command line.
type filterValue struct {
	filter  *Filter
	include bool
}

func (v *filterValue) Set(s string) error {
	var match func(string) bool
	if strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") && len(s) >= 2 {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return err
		}
		match = regexMatch(re)
	} else {
		match = prefixMatch(s)
	}
	v.filter.rules = append(v.filter.rules, rule{include: v.include, match: match})
	return nil
}

func (v *filterValue) String() string { return "" }
func (v *filterValue) Type() string   { return "prefix-or-/regexp/" }

// AddFlags registers --include and --exclude on flags, each
// accumulating into filter in command-line order.
func AddFlags(flags *pflag.FlagSet, filter *Filter) {
	flags.Var(&filterValue{filter: filter, include: true}, "include",
		"include refs matching a prefix or /regexp/")
	flags.Var(&filterValue{filter: filter, include: false}, "exclude",
		"exclude refs matching a prefix or /regexp/")
}
