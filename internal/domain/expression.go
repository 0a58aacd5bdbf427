package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// expressionNamespace is the UUID namespace for deriving deterministic
// expression ids from candidate text. The same phrase always maps to the
// same id, which makes persist an idempotent upsert.
var expressionNamespace = uuid.MustParse("b1c0a7e4-5d2f-4f3a-9c66-0d8f2f1a6e21")

// Common validation errors for Expression
var (
	ErrEmptyExpressionText = errors.New("expression text cannot be empty")
)

// ExpressionID derives the deterministic id for an expression from its text.
func ExpressionID(text string) string {
	return uuid.NewSHA1(expressionNamespace, []byte(text)).String()
}

// Expression is an accepted, persisted phrase together with its generated
// explanation and example. Repeated persist runs converge on the same record.
type Expression struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Explanation string    `json:"explanation"`
	Example     string    `json:"example"`
	Score       int       `json:"score"`
	MaterialID  string    `json:"material_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewExpression builds an Expression from an accepted candidate.
func NewExpression(c *Candidate, materialID string, now time.Time) (*Expression, error) {
	if c.Phrase == "" {
		return nil, ErrEmptyExpressionText
	}

	return &Expression{
		ID:          ExpressionID(c.Phrase),
		Text:        c.Phrase,
		Explanation: c.Explanation,
		Example:     c.Example,
		Score:       c.Score,
		MaterialID:  materialID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
