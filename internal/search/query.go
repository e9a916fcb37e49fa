// Package search builds ranked task searches. A Query describes field
// boosts, the status filter and the result cap independently of the backend;
// the FTS5 helpers render it for SQLite.
package search

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	model "task-tracker.com/task-tracker/internal/models"
)

const (
	DefaultLimit = 25

	BoostName        = 2.0
	BoostDescription = 1.0
	BoostProject     = 0.3
)

// IndexedFields is the column order of the full-text index.
var IndexedFields = []string{model.ColumnName, model.ColumnDescription, model.ColumnProject}

type Clause struct {
	Field string
	Boost float64
}

type Filter struct {
	Field string
	Value string
}

type Query struct {
	Text               string
	Should             []Clause
	MinimumShouldMatch int
	Filter             Filter
	Limit              int
}

// Build turns free text and the open/closed toggle into a boosted OR query
// with a hard status filter.
func Build(text string, closed bool) (Query, error) {
	text = strings.TrimSpace(text)
	if len(splitTerms(text)) == 0 {
		return Query{}, apperrors.ErrEmptySearch
	}

	status := model.StatusOpen
	if closed {
		status = model.StatusClosed
	}

	return Query{
		Text: text,
		Should: []Clause{
			{Field: model.ColumnName, Boost: BoostName},
			{Field: model.ColumnDescription, Boost: BoostDescription},
			{Field: model.ColumnProject, Boost: BoostProject},
		},
		MinimumShouldMatch: 1,
		Filter:             Filter{Field: model.ColumnStatus, Value: string(status)},
		Limit:              DefaultLimit,
	}, nil
}

func (q Query) Terms() []string {
	return splitTerms(q.Text)
}

// Boost returns the weight for field, or 0 if the field is not searched.
func (q Query) Boost(field string) float64 {
	for _, c := range q.Should {
		if c.Field == field {
			return c.Boost
		}
	}
	return 0
}

// MatchExpression renders the FTS5 MATCH argument: every term quoted, OR-joined,
// restricted to the Should fields.
func (q Query) MatchExpression() string {
	fields := make([]string, 0, len(q.Should))
	for _, c := range q.Should {
		fields = append(fields, c.Field)
	}
	return q.match(fields...)
}

// FieldMatchExpression is MatchExpression restricted to a single column.
func (q Query) FieldMatchExpression(field string) string {
	return q.match(field)
}

func (q Query) match(fields ...string) string {
	terms := q.Terms()
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return fmt.Sprintf("{%s} : (%s)", strings.Join(fields, " "), strings.Join(quoted, " OR "))
}

// Weights renders bm25 column weights in IndexedFields order.
func (q Query) Weights() string {
	weights := make([]string, 0, len(IndexedFields))
	for _, field := range IndexedFields {
		weights = append(weights, strconv.FormatFloat(q.Boost(field), 'f', -1, 64))
	}
	return strings.Join(weights, ", ")
}

func splitTerms(text string) []string {
	var terms []string
	for _, word := range strings.Fields(text) {
		if strings.IndexFunc(word, isWordRune) >= 0 {
			terms = append(terms, word)
		}
	}
	return terms
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
