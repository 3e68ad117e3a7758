package entities

// Option is one selectable answer of a question. It votes for exactly one dosha.
type Option struct {
	ID    string `json:"id"`    // stable identifier, unique across the catalog
	Text  string `json:"text"`  // display text
	Dosha Dosha  `json:"dosha"` // category the option votes for
}

// Question is a static catalog entry of the Prakriti questionnaire.
type Question struct {
	ID       string   `json:"id"`
	Category string   `json:"category"` // "Body", "Mind", "Habits", "Digestion", "Emotions"
	Text     string   `json:"text"`
	Options  []Option `json:"options"`
}

// Option returns the option with the given ID.
func (q Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// OptionIndex returns the position of the option with the given ID, or -1.
func (q Question) OptionIndex(id string) int {
	for i, o := range q.Options {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Catalog is the immutable questionnaire loaded at startup.
type Catalog struct {
	Version   string     `json:"version"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.Questions)
}

// Question returns the question at index i.
func (c *Catalog) Question(i int) (Question, bool) {
	if i < 0 || i >= len(c.Questions) {
		return Question{}, false
	}
	return c.Questions[i], true
}
