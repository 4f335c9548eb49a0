package query

import (
	"fmt"

	"github.com/pkg/errors"
)

// TermQuery 精确匹配查询
type TermQuery struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func (q *TermQuery) Type() QueryType {
	return QueryTypeTerm
}

func (q *TermQuery) ToSQL(quote Quoter) (string, []any, error) {
	if q.Field == "" {
		return "", nil, errors.New("term query field is empty")
	}
	if q.Value == nil {
		return "", nil, errors.Errorf("term query on %s has nil value", q.Field)
	}
	column := q.Field
	if quote != nil {
		column = quote(q.Field)
	}
	return fmt.Sprintf("%s = ?", column), []any{q.Value}, nil
}
