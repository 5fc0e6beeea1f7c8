package game

import (
	"math/rand"
)

// DefaultSelectors is the fixed two-member set a round's answer selector is
// drawn from.
var DefaultSelectors = []string{"Harri", "Silja"}

// DefaultAnswerCountries is the candidate set a round's answer country is
// drawn from.
var DefaultAnswerCountries = []string{"France", "Italy", "Spain"}

// GuessableCountries is the full list offered to players. A superset of the
// answer candidates, so some guesses can never score.
var GuessableCountries = []string{
	"France",
	"Italy",
	"Spain",
	"Germany",
	"Portugal",
	"USA",
	"Argentina",
	"Chile",
	"Australia",
	"South Africa",
}

// Answer is a round's correct (country, selector) pair.
type Answer struct {
	Country  string
	Selector string
}

// Answerer draws round answers.
type Answerer struct {
	countries []string
	selectors []string
	rng       *rand.Rand
}

// NewAnswerer creates an Answerer over the given candidate sets, falling
// back to the defaults when a set is empty.
func NewAnswerer(countries, selectors []string, rng *rand.Rand) *Answerer {
	if len(countries) == 0 {
		countries = DefaultAnswerCountries
	}
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	return &Answerer{
		countries: countries,
		selectors: selectors,
		rng:       rng,
	}
}

// Draw picks an answer uniformly from the candidate sets.
func (a *Answerer) Draw() Answer {
	return Answer{
		Country:  a.countries[a.rng.Intn(len(a.countries))],
		Selector: a.selectors[a.rng.Intn(len(a.selectors))],
	}
}
