package content

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
)

// SchemaError reports a frontmatter validation failure for a single entry.
// It unwraps to apperr.ErrInvalidEntry so callers can branch on it.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("content: %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return apperr.ErrInvalidEntry }

// Validate checks the entry against its collection's schema.
//
// All collections require a title and a slug. Posts additionally require a
// description and a publish date, papers a publish date. Weight is only
// meaningful for pages but is accepted (and must be non-negative) everywhere.
func (e *Entry) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&e.Collection, validation.Required, validation.By(collectionRule)),
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Slug, validation.Required),
		validation.Field(&e.Weight, validation.Min(0)),
	}

	switch e.Collection {
	case CollectionPosts:
		rules = append(rules,
			validation.Field(&e.Description, validation.Required),
			validation.Field(&e.Date, validation.Required),
		)
	case CollectionPapers:
		rules = append(rules,
			validation.Field(&e.Date, validation.Required),
		)
	}

	if err := validation.ValidateStruct(e, rules...); err != nil {
		return &SchemaError{Path: e.Path, Err: err}
	}
	return nil
}

func collectionRule(value interface{}) error {
	c, _ := value.(Collection)
	if !c.Valid() {
		return fmt.Errorf("unknown collection %q", string(c))
	}
	return nil
}
