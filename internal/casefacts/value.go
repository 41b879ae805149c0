// Package casefacts projects the flat WizardFacts dictionary into the typed
// CaseFacts aggregate the decision engine evaluates. Normalization is pure:
// no I/O, no clock, deterministic for a given input.
package casefacts

import "time"

// Every normalized field is tri-state: present-true/present-false/absent (and
// the equivalents for strings, money, and dates). An explicit false is a
// legal answer and must never collapse into "not provided" - rules that gate
// legal documents branch on exactly that distinction.

// Bool is an optional boolean.
type Bool struct {
	Value   bool
	Present bool
}

// BoolOf wraps a known boolean.
func BoolOf(v bool) Bool { return Bool{Value: v, Present: true} }

// True reports an explicit true answer.
func (b Bool) True() bool { return b.Present && b.Value }

// False reports an explicit false answer - observably distinct from absent.
func (b Bool) False() bool { return b.Present && !b.Value }

// String is an optional string. An empty string can be a present value where
// that is semantically valid; Present carries the distinction.
type String struct {
	Value   string
	Present bool
}

func StringOf(v string) String { return String{Value: v, Present: true} }

// Money is an optional monetary amount in pounds.
type Money struct {
	Value   float64
	Present bool
}

func MoneyOf(v float64) Money { return Money{Value: v, Present: true} }

// Date is an optional calendar date, normalized to midnight UTC.
type Date struct {
	Value   time.Time
	Present bool
}

func DateOf(v time.Time) Date {
	return Date{Value: midnightUTC(v), Present: true}
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StringList is an optional list of strings.
type StringList struct {
	Values  []string
	Present bool
}

func StringListOf(vs ...string) StringList {
	return StringList{Values: vs, Present: true}
}

// Contains reports whether the list is present and holds v.
func (l StringList) Contains(v string) bool {
	if !l.Present {
		return false
	}
	for _, item := range l.Values {
		if item == v {
			return true
		}
	}
	return false
}
