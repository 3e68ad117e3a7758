// Package scoring turns a Prakriti answer set into a dosha distribution.
//
// The functions here are pure: they never mutate their inputs and perform no I/O,
// so every page, handler or job that needs a result goes through the same code.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

var (
	ErrInvalidAnswerIndex  = errors.New("answer index out of range")
	ErrInvalidAnswerOption = errors.New("answer does not match any option of the question")
	ErrEmptyQuiz           = errors.New("quiz has no answers")
)

// Rounding selects how raw shares are turned into integer percentages.
type Rounding string

const (
	// RoundingIndependent rounds every dosha on its own. The sum may be off by one or two points.
	RoundingIndependent Rounding = "independent"
	// RoundingLargestRemainder floors every share and hands the leftover points to the
	// largest remainders, so the sum is exactly 100.
	RoundingLargestRemainder Rounding = "largest_remainder"
)

const (
	DefaultDualThreshold      = 10
	DefaultTridoshicThreshold = 15
)

// Options tunes classification.
type Options struct {
	DualThreshold      int // top two percentages within this many points => dual
	TridoshicThreshold int // max-min spread within this many points => tridoshic
	Rounding           Rounding
}

// DefaultOptions returns the thresholds used by the ekaBrahmaa quiz.
func DefaultOptions() Options {
	return Options{
		DualThreshold:      DefaultDualThreshold,
		TridoshicThreshold: DefaultTridoshicThreshold,
		Rounding:           RoundingIndependent,
	}
}

// RecordAnswer stores optionID at questionIndex and returns the updated copy of answers.
// A previous answer for the same question is overwritten.
func RecordAnswer(catalog *entities.Catalog, answers entities.AnswerSet, questionIndex int, optionID string) (entities.AnswerSet, error) {
	q, ok := catalog.Question(questionIndex)
	if !ok {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidAnswerIndex, questionIndex, catalog.Len())
	}

	if _, ok := q.Option(optionID); !ok {
		return nil, fmt.Errorf("%w: question %s, option %q", ErrInvalidAnswerOption, q.ID, optionID)
	}

	out := answers.Clone(catalog.Len())
	out[questionIndex] = optionID
	return out, nil
}

// Tally counts the dosha votes of every non-empty answer.
// It also returns the number of answered questions.
func Tally(catalog *entities.Catalog, answers entities.AnswerSet) (entities.Tally, int, error) {
	if len(answers) > catalog.Len() {
		return nil, 0, fmt.Errorf("%w: %d answers for %d questions", ErrInvalidAnswerIndex, len(answers), catalog.Len())
	}

	tally := entities.NewTally()
	answered := 0

	for i, optionID := range answers {
		if optionID == "" {
			continue
		}

		q := catalog.Questions[i]
		opt, ok := q.Option(optionID)
		if !ok {
			return nil, 0, fmt.Errorf("%w: question %s, option %q", ErrInvalidAnswerOption, q.ID, optionID)
		}

		tally[opt.Dosha]++
		answered++
	}

	return tally, answered, nil
}

// Finalize computes the dosha distribution of answers.
//
// Unanswered questions are left out of the denominator. An answer set without a
// single answer is rejected with ErrEmptyQuiz. CompletedAt is left for the caller.
func Finalize(catalog *entities.Catalog, answers entities.AnswerSet, opts Options) (*entities.Result, error) {
	tally, answered, err := Tally(catalog, answers)
	if err != nil {
		return nil, err
	}
	if answered == 0 {
		return nil, ErrEmptyQuiz
	}

	var pct map[entities.Dosha]int
	switch opts.Rounding {
	case RoundingLargestRemainder:
		pct = largestRemainder(tally, answered)
	default:
		pct = independent(tally, answered)
	}

	res := &entities.Result{
		CatalogVersion: catalog.Version,
		Percentages:    pct,
		Counts:         tally,
		Answered:       answered,
		Total:          catalog.Len(),
	}
	classify(res, opts)

	return res, nil
}

func independent(tally entities.Tally, total int) map[entities.Dosha]int {
	pct := make(map[entities.Dosha]int, len(entities.Doshas))
	for _, d := range entities.Doshas {
		pct[d] = int(math.Round(100 * float64(tally[d]) / float64(total)))
	}
	return pct
}

func largestRemainder(tally entities.Tally, total int) map[entities.Dosha]int {
	type share struct {
		dosha     entities.Dosha
		remainder int
	}

	pct := make(map[entities.Dosha]int, len(entities.Doshas))
	shares := make([]share, 0, len(entities.Doshas))
	assigned := 0

	for _, d := range entities.Doshas {
		raw := 100 * tally[d]
		pct[d] = raw / total
		assigned += pct[d]
		shares = append(shares, share{dosha: d, remainder: raw % total})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].remainder > shares[j].remainder
	})

	for i := 0; assigned < 100; i++ {
		pct[shares[i%len(shares)].dosha]++
		assigned++
	}

	return pct
}

func classify(res *entities.Result, opts Options) {
	// Ties resolve to the earlier dosha in the fixed order.
	hi, lo := -1, 101
	for _, d := range entities.Doshas {
		p := res.Percentages[d]
		if p > hi {
			hi = p
			res.Dominant = d
		}
		if p < lo {
			lo = p
		}
	}

	sorted := res.Sorted()
	res.Dual = res.Percentages[sorted[0]]-res.Percentages[sorted[1]] <= opts.DualThreshold
	res.Tridoshic = hi-lo <= opts.TridoshicThreshold
}
