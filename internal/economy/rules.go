// Package economy holds the pure scoring, gem, point and streak rules.
package economy

import "github.com/abhisek/drillz/internal/config"

// Rules evaluates scores and economy deltas against a set of constants.
// The zero value is not usable; build one with NewRules.
type Rules struct {
	c config.Economy
}

// NewRules returns rules for the given constants.
func NewRules(c config.Economy) Rules {
	return Rules{c: c}
}

// DefaultRules returns rules for the stock constants.
func DefaultRules() Rules {
	return NewRules(config.DefaultEconomy())
}

// Constants returns the constants the rules were built with.
func (r Rules) Constants() config.Economy {
	return r.c
}

// Target is the number of questions a drill with available questions asks.
func (r Rules) Target(available int) int {
	return min(available, r.c.QuestionsPerDrill)
}
