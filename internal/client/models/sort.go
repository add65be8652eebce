package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/catalogctl/internal/common"
)

// SortField selects the server-side ordering column.
type SortField string

const (
	SortByID    SortField = "id"
	SortByPrice SortField = "price"
	SortByStock SortField = "stock"
	SortByName  SortField = "name"
)

// SortDirection is the server-side ordering direction.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortSpec is always fully specified; the zero value is not valid, use
// DefaultSort instead.
type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSort is {id, asc}.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByID, Direction: Ascending}
}

// Validate checks both parts against their closed enumerations.
func (s SortSpec) Validate() error {
	switch s.Field {
	case SortByID, SortByPrice, SortByStock, SortByName:
	default:
		return fmt.Errorf("%w: field %q", common.ErrInvalidSortSpec, s.Field)
	}
	switch s.Direction {
	case Ascending, Descending:
	default:
		return fmt.Errorf("%w: direction %q", common.ErrInvalidSortSpec, s.Direction)
	}
	return nil
}

// String returns the "field-direction" token, e.g. "price-desc".
func (s SortSpec) String() string {
	return string(s.Field) + "-" + string(s.Direction)
}

// ParseSortSpec parses a "field-direction" token. A bare field defaults to
// ascending order.
func ParseSortSpec(token string) (SortSpec, error) {
	field, dir, found := strings.Cut(strings.ToLower(strings.TrimSpace(token)), "-")
	if !found {
		dir = string(Ascending)
	}
	s := SortSpec{Field: SortField(field), Direction: SortDirection(dir)}
	if err := s.Validate(); err != nil {
		return SortSpec{}, err
	}
	return s, nil
}

// SortOption pairs a sort spec with its menu label.
type SortOption struct {
	Label string
	Spec  SortSpec
}

// SortOptions lists the orderings offered in the console, default first.
var SortOptions = []SortOption{
	{Label: "Padrão", Spec: SortSpec{SortByID, Ascending}},
	{Label: "Maior Preço", Spec: SortSpec{SortByPrice, Descending}},
	{Label: "Menor Preço", Spec: SortSpec{SortByPrice, Ascending}},
	{Label: "Maior Estoque", Spec: SortSpec{SortByStock, Descending}},
	{Label: "Menor Estoque", Spec: SortSpec{SortByStock, Ascending}},
	{Label: "A-Z", Spec: SortSpec{SortByName, Ascending}},
	{Label: "Z-A", Spec: SortSpec{SortByName, Descending}},
}
