package entities

// AnswerSet holds one slot per question with the selected option ID, or "" when
// the question has not been answered yet.
type AnswerSet []string

// NewAnswerSet creates an empty answer set for n questions.
func NewAnswerSet(n int) AnswerSet {
	return make(AnswerSet, n)
}

// Answered returns the number of non-empty slots.
func (a AnswerSet) Answered() int {
	n := 0
	for _, id := range a {
		if id != "" {
			n++
		}
	}
	return n
}

// Clone returns a copy of a resized to at least n slots.
func (a AnswerSet) Clone(n int) AnswerSet {
	if n < len(a) {
		n = len(a)
	}
	out := make(AnswerSet, n)
	copy(out, a)
	return out
}

// At returns the answer at index i, or "" when out of range.
func (a AnswerSet) At(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i]
}
