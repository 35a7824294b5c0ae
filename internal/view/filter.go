package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Op is a filter rule operator.
type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpContains Op = "contains"
	OpRegex    Op = "regex"
	OpIn       Op = "in"
)

// Ops lists the supported operators.
var Ops = []Op{OpEq, OpNe, OpContains, OpRegex, OpIn}

// compileRegex is swapped in tests to count compilations.
var compileRegex = regexp.Compile

// ErrPredicatePanic is returned by ApplyFilter when a predicate filter panics.
var ErrPredicatePanic = errors.New("filter predicate panicked")

// Rule is one declarative filter clause.
type Rule struct {
	Field Field `json:"field" yaml:"field"`
	Op    Op    `json:"op" yaml:"op"`
	Value any   `json:"value" yaml:"value"`
}

// FilterKind tags which branch of a Filter is populated.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterPredicate
	FilterRules
)

// Filter is either nothing (match all), a Go predicate, or an AND-combined
// rule set. Only rule sets survive JSON round trips.
type Filter struct {
	Kind      FilterKind
	Predicate func(Row) bool
	Rules     []Rule
}

// Predicate wraps fn as a filter.
func Predicate(fn func(Row) bool) Filter {
	return Filter{Kind: FilterPredicate, Predicate: fn}
}

// RuleSet builds an AND-combined rule filter.
func RuleSet(rules ...Rule) Filter {
	return Filter{Kind: FilterRules, Rules: rules}
}

// IsZero reports whether the filter matches everything by construction.
func (f Filter) IsZero() bool {
	return f.Kind == FilterNone
}

// MarshalJSON encodes rule sets as an array and everything else as null.
func (f Filter) MarshalJSON() ([]byte, error) {
	if f.Kind != FilterRules {
		return []byte("null"), nil
	}
	rules := f.Rules
	if rules == nil {
		rules = []Rule{}
	}
	return json.Marshal(rules)
}

// UnmarshalJSON accepts null or an array of rules.
func (f *Filter) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Filter{}
		return nil
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return fmt.Errorf("filter must be an array of rules: %w", err)
	}
	*f = RuleSet(rules...)
	return nil
}

// MarshalYAML encodes the rule list (or nil).
func (f Filter) MarshalYAML() (any, error) {
	if f.Kind != FilterRules {
		return nil, nil
	}
	return f.Rules, nil
}

// Matches reports whether row passes filter f. A panicking predicate
// propagates; use ApplyFilter to recover it.
func Matches(row Row, f Filter) bool {
	switch f.Kind {
	case FilterPredicate:
		if f.Predicate == nil {
			return true
		}
		return f.Predicate(row)
	case FilterRules:
		return matchAll(row, compileRules(f.Rules))
	default:
		return true
	}
}

// ApplyFilter returns the rows that pass f, in input order. The input slice
// is not modified. A panic inside a predicate filter is recovered and
// returned as ErrPredicatePanic with no rows.
func ApplyFilter(rows []Row, f Filter) (out []Row, err error) {
	if f.IsZero() {
		return append([]Row(nil), rows...), nil
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrPredicatePanic, r)
		}
	}()

	out = make([]Row, 0, len(rows))
	if f.Kind == FilterRules {
		rules := compileRules(f.Rules)
		for _, row := range rows {
			if matchAll(row, rules) {
				out = append(out, row)
			}
		}
		return out, nil
	}
	for _, row := range rows {
		if Matches(row, f) {
			out = append(out, row)
		}
	}
	return out, nil
}

// compiledRule is a Rule with its regex, if any, compiled once.
type compiledRule struct {
	Rule
	re *regexp.Regexp
}

func (r Rule) compile() compiledRule {
	c := compiledRule{Rule: r}
	if r.Op == OpRegex {
		// A nil re after a failed compile means match everything.
		c.re, _ = compileRegex("(?i)" + coerce(r.Value))
	}
	return c
}

func compileRules(rules []Rule) []compiledRule {
	out := make([]compiledRule, len(rules))
	for i, r := range rules {
		out[i] = r.compile()
	}
	return out
}

func matchAll(row Row, rules []compiledRule) bool {
	for _, r := range rules {
		if !r.match(row) {
			return false
		}
	}
	return true
}

// Match evaluates a single rule. Malformed regexes and unknown operators
// match everything so a broken user filter never hides data.
func (r Rule) Match(row Row) bool {
	return r.compile().match(row)
}

func (r compiledRule) match(row Row) bool {
	raw, known := row.Value(r.Field)

	switch r.Op {
	case OpEq:
		return r.rowString(raw, known) == coerce(r.Value)
	case OpNe:
		return r.rowString(raw, known) != coerce(r.Value)
	case OpContains:
		return strings.Contains(strings.ToLower(text(raw)), strings.ToLower(coerce(r.Value)))
	case OpRegex:
		if r.re == nil {
			return true
		}
		return r.re.MatchString(text(raw))
	case OpIn:
		return inList(raw, r.Value)
	default:
		return true
	}
}

// rowString coerces a row value for eq/ne. Unknown fields compare as
// "undefined" so they never equal a real value.
func (r Rule) rowString(raw any, known bool) string {
	if !known {
		return "undefined"
	}
	return coerce(raw)
}

// text is the substring/regex subject: missing values search as "".
func text(v any) string {
	if v == nil {
		return ""
	}
	return coerce(v)
}

// inList tests raw membership in list. A non-slice list matches nothing.
func inList(raw, list any) bool {
	if list == nil {
		return false
	}
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if rawEqual(raw, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

// rawEqual compares without string coercion; numbers compare by value
// regardless of their Go type.
func rawEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
