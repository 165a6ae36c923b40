package api

import (
	"fmt"
	"strings"
)

// StatusPolicy is a named set of acceptable response codes. Making the
// tolerance a first-class value keeps any widening of the contract (e.g.
// accepting 500 alongside 400) explicit rather than an inline condition.
// The shipped contract is strict: malformed input must yield 400.
type StatusPolicy struct {
	name  string
	codes []int
}

// Exactly accepts a single status code.
func Exactly(code int) StatusPolicy {
	return StatusPolicy{name: fmt.Sprintf("%d", code), codes: []int{code}}
}

// OneOf accepts any of the given status codes under a descriptive name.
func OneOf(name string, codes ...int) StatusPolicy {
	return StatusPolicy{name: name, codes: codes}
}

// Allows reports whether code satisfies the policy.
func (p StatusPolicy) Allows(code int) bool {
	for _, c := range p.codes {
		if c == code {
			return true
		}
	}
	return false
}

// String renders the acceptable codes for failure messages.
func (p StatusPolicy) String() string {
	if len(p.codes) == 1 {
		return p.name
	}
	parts := make([]string, len(p.codes))
	for i, c := range p.codes {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return fmt.Sprintf("%s [%s]", p.name, strings.Join(parts, ", "))
}
