// Package entities contains domain entities used across the application.
package entities

// Dosha is one of the three Ayurvedic constitutional categories the
// Prakriti questionnaire estimates.
type Dosha string

const (
	Vata  Dosha = "vata"
	Pitta Dosha = "pitta"
	Kapha Dosha = "kapha"
)

// Doshas lists the categories in their fixed iteration order.
// The order is used for tie-breaking wherever a single dosha has to be picked.
var Doshas = []Dosha{Vata, Pitta, Kapha}

// IsValid reports whether d is one of the known doshas.
func (d Dosha) IsValid() bool {
	switch d {
	case Vata, Pitta, Kapha:
		return true
	}
	return false
}

// Title returns a display name for the dosha.
func (d Dosha) Title() string {
	switch d {
	case Vata:
		return "Vata"
	case Pitta:
		return "Pitta"
	case Kapha:
		return "Kapha"
	}
	return string(d)
}

// Tally maps each dosha to the number of answers that voted for it.
type Tally map[Dosha]int

// NewTally returns a tally with every dosha initialized to zero.
func NewTally() Tally {
	t := make(Tally, len(Doshas))
	for _, d := range Doshas {
		t[d] = 0
	}
	return t
}

// Leading returns the dosha with the highest count, ties broken by the fixed order.
// ok is false when nothing was counted yet.
func (t Tally) Leading() (d Dosha, ok bool) {
	best := 0
	for _, cand := range Doshas {
		if t[cand] > best {
			best = t[cand]
			d = cand
		}
	}
	return d, best > 0
}
