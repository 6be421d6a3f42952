package models

type QuestionType string

const (
	Singleline  QuestionType = "singleline"
	Multichoice QuestionType = "multichoice"
	Multiselect QuestionType = "multiselect"
	Stackrank   QuestionType = "stackrank"
)

// QuestionTypes lists every supported variant in declaration order.
var QuestionTypes = []QuestionType{Singleline, Multichoice, Multiselect, Stackrank}

func (t QuestionType) IsValid() bool {
	switch t {
	case Singleline, Multichoice, Multiselect, Stackrank:
		return true
	default:
		return false
	}
}

// Question is a tagged union over the four question variants. Exactly one of
// the content pointers matching Type is set.
type Question struct {
	Index    int          `json:"index"`
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Prompt   string       `json:"prompt"`
	Required bool         `json:"required"`

	Singleline  *SinglelineContent  `json:"singleline,omitempty"`
	Multichoice *ChoiceContent      `json:"multichoice,omitempty"`
	Multiselect *MultiselectContent `json:"multiselect,omitempty"`
	Stackrank   *StackrankContent   `json:"stackrank,omitempty"`
}

type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type SinglelineContent struct {
	Multiline   bool   `json:"multiline"`
	Placeholder string `json:"placeholder,omitempty"`
}

type ChoiceContent struct {
	Choices []Choice `json:"choices"`
}

type MultiselectContent struct {
	ChoiceContent
	MaxSelections int `json:"max_selections"`
}

// StackrankContent is declared but ranking behavior is not implemented.
type StackrankContent struct {
	Choices []Choice `json:"choices"`
}

// Choices returns a copy of the ordered choices for choice-based variants.
func (q Question) Choices() []Choice {
	var choices []Choice
	switch q.Type {
	case Multichoice:
		if q.Multichoice != nil {
			choices = q.Multichoice.Choices
		}
	case Multiselect:
		if q.Multiselect != nil {
			choices = q.Multiselect.Choices
		}
	case Stackrank:
		if q.Stackrank != nil {
			choices = q.Stackrank.Choices
		}
	case Singleline:
		return nil
	}
	if choices == nil {
		return nil
	}
	return append([]Choice(nil), choices...)
}

func (q Question) HasChoice(id string) bool {
	for _, c := range q.Choices() {
		if c.ID == id {
			return true
		}
	}
	return false
}

// MaxSelections is the selection bound for multiselect questions, 1 for
// single-select and 0 where selections do not apply.
func (q Question) MaxSelections() int {
	switch q.Type {
	case Multiselect:
		if q.Multiselect != nil {
			return q.Multiselect.MaxSelections
		}
	case Multichoice:
		return 1
	case Singleline, Stackrank:
	}
	return 0
}

// clone deep-copies variant payloads so a definition never shares slices with its input.
func (q Question) clone() Question {
	out := q
	if q.Singleline != nil {
		c := *q.Singleline
		out.Singleline = &c
	}
	if q.Multichoice != nil {
		out.Multichoice = &ChoiceContent{Choices: append([]Choice(nil), q.Multichoice.Choices...)}
	}
	if q.Multiselect != nil {
		out.Multiselect = &MultiselectContent{
			ChoiceContent: ChoiceContent{Choices: append([]Choice(nil), q.Multiselect.Choices...)},
			MaxSelections: q.Multiselect.MaxSelections,
		}
	}
	if q.Stackrank != nil {
		out.Stackrank = &StackrankContent{Choices: append([]Choice(nil), q.Stackrank.Choices...)}
	}
	return out
}
