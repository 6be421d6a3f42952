package models

import "sort"

// AnswerSet is the mutable per-session record of answers, keyed by question
// index. It is owned by a single session and is not safe for concurrent use.
type AnswerSet struct {
	surveyID string
	answers  map[int][]string
}

func NewAnswerSet(surveyID string) *AnswerSet {
	return &AnswerSet{
		surveyID: surveyID,
		answers:  make(map[int][]string),
	}
}

func (a *AnswerSet) SurveyID() string {
	return a.surveyID
}

// SetAnswer replaces any prior values for the question. No validation happens here.
func (a *AnswerSet) SetAnswer(index int, values ...string) {
	a.answers[index] = append(make([]string, 0, len(values)), values...)
}

// IsAnswered reports whether the question has at least one non-empty value.
func (a *AnswerSet) IsAnswered(index int) bool {
	for _, v := range a.answers[index] {
		if v != "" {
			return true
		}
	}
	return false
}

// Values returns a copy of the values recorded for the question.
func (a *AnswerSet) Values(index int) ([]string, bool) {
	values, ok := a.answers[index]
	if !ok {
		return nil, false
	}
	return append(make([]string, 0, len(values)), values...), true
}

// Indexes returns the question indexes that have an entry, ascending.
func (a *AnswerSet) Indexes() []int {
	indexes := make([]int, 0, len(a.answers))
	for i := range a.answers {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	return indexes
}

func (a *AnswerSet) Len() int {
	return len(a.answers)
}

// Snapshot returns a deep copy that shares no memory with a.
func (a *AnswerSet) Snapshot() *AnswerSet {
	out := NewAnswerSet(a.surveyID)
	for i, values := range a.answers {
		out.answers[i] = append(make([]string, 0, len(values)), values...)
	}
	return out
}
