package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/domain/filter"
)

// filterTranslation is the structured output the model returns for a query.
type filterTranslation struct {
	Filters []translatedCondition `json:"filters"`
}

type translatedCondition struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
	Negate    bool   `json:"negate"`
}

// translateFilters derives a structured pre-filter from the free-text query
// against the static attribute catalog. The currency filter is always
// appended afterwards; it is never part of the translation. An output naming
// an attribute outside the catalog is a malformed translation and surfaces as
// an upstream model error.
func (s *Service) translateFilters(ctx context.Context, query string) (filter.Expression, error) {
	var translation filterTranslation
	if err := s.model.GenerateJSON(ctx, translationPrompt(query), &translation); err != nil {
		return filter.Expression{}, fmt.Errorf("filter translation: %w", err)
	}

	var must, mustNot []filter.Condition
	for _, tc := range translation.Filters {
		if tc.Attribute == domain.FieldIsCurrent {
			// Force-applied separately, never taken from the model.
			continue
		}
		attr, ok := domain.CatalogAttribute(tc.Attribute)
		if !ok {
			return filter.Expression{}, domain.NewModelError("malformed_response",
				fmt.Errorf("translated filter references unknown attribute %q", tc.Attribute))
		}
		cond, err := filter.NewMatch(attr.Alias, tc.Value)
		if err != nil {
			return filter.Expression{}, domain.NewModelError("malformed_response",
				fmt.Errorf("translated filter for %q: %w", tc.Attribute, err))
		}
		if tc.Negate {
			mustNot = append(mustNot, cond)
		} else {
			must = append(must, cond)
		}
	}

	expr, err := filter.NewExpression(must, mustNot)
	if err != nil {
		return filter.Expression{}, domain.NewModelError("malformed_response",
			fmt.Errorf("translated filter: %w", err))
	}

	current, err := filter.NewMatch(domain.FieldIsCurrent, "true")
	if err != nil {
		return filter.Expression{}, err
	}
	return expr.WithMust(current), nil
}

func translationPrompt(query string) string {
	var b strings.Builder
	b.WriteString(`Derive metadata filters for the document query below.
Return a JSON object {"filters": [{"attribute","value","negate"}]}.
Only use attributes from this catalog; return an empty array when no
attribute clearly applies:

`)
	for _, a := range domain.FilterCatalog {
		fmt.Fprintf(&b, "- %s (%s): %s\n", a.Name, a.Type, a.Description)
	}
	b.WriteString("\nQuery: ")
	b.WriteString(query)
	return b.String()
}
