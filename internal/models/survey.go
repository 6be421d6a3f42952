package models

// SurveyMeta carries the survey-level fields of a definition.
type SurveyMeta struct {
	ID                 string
	Name               string
	Description        string
	Required           bool
	MultipleResponses  bool
	ShowSuccessMessage bool
	SuccessMessage     string
}

// SurveyDefinition is the immutable description of a fetched survey. Fields
// are only reachable through accessors so callers can not mutate it.
type SurveyDefinition struct {
	meta      SurveyMeta
	questions []Question
	byID      map[string]int
}

// NewSurveyDefinition copies questions and assigns each its identity, which
// is its position in the definition.
func NewSurveyDefinition(meta SurveyMeta, questions []Question) *SurveyDefinition {
	def := &SurveyDefinition{
		meta:      meta,
		questions: make([]Question, len(questions)),
		byID:      make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		c := q.clone()
		c.Index = i
		def.questions[i] = c
		if c.ID != "" {
			def.byID[c.ID] = i
		}
	}
	return def
}

func (d *SurveyDefinition) ID() string { return d.meta.ID }
func (d *SurveyDefinition) Name() string { return d.meta.Name }
func (d *SurveyDefinition) Description() string { return d.meta.Description }
func (d *SurveyDefinition) IsRequired() bool { return d.meta.Required }
func (d *SurveyDefinition) AllowsMultipleResponses() bool { return d.meta.MultipleResponses }
func (d *SurveyDefinition) Meta() SurveyMeta { return d.meta }
func (d *SurveyDefinition) Len() int { return len(d.questions) }

// Questions returns the ordered questions. The slice and variant payloads are copies.
func (d *SurveyDefinition) Questions() []Question {
	out := make([]Question, len(d.questions))
	for i, q := range d.questions {
		out[i] = q.clone()
	}
	return out
}

func (d *SurveyDefinition) Question(index int) (Question, bool) {
	if index < 0 || index >= len(d.questions) {
		return Question{}, false
	}
	return d.questions[index].clone(), true
}

func (d *SurveyDefinition) QuestionByID(id string) (Question, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Question{}, false
	}
	return d.questions[i].clone(), true
}

// RequiredCount returns the number of required questions.
func (d *SurveyDefinition) RequiredCount() int {
	n := 0
	for _, q := range d.questions {
		if q.Required {
			n++
		}
	}
	return n
}

// SuccessText returns the message to show after submission, if any.
func (d *SurveyDefinition) SuccessText() (string, bool) {
	if d.meta.ShowSuccessMessage && d.meta.SuccessMessage != "" {
		return d.meta.SuccessMessage, true
	}
	return "", false
}

// SurveyView is the display-time projection of a definition.
type SurveyView struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	Required           bool       `json:"required"`
	ShowSuccessMessage bool       `json:"show_success_message"`
	SuccessMessage     string     `json:"success_message,omitempty"`
	Questions          []Question `json:"questions"`
}

func (d *SurveyDefinition) View() SurveyView {
	return SurveyView{
		ID:                 d.meta.ID,
		Name:               d.meta.Name,
		Description:        d.meta.Description,
		Required:           d.meta.Required,
		ShowSuccessMessage: d.meta.ShowSuccessMessage,
		SuccessMessage:     d.meta.SuccessMessage,
		Questions:          d.Questions(),
	}
}
