// Package models defines client-side data models used by the catalogctl console.
package models

import (
	"fmt"
	"strings"
)

// Product is a catalog record as exchanged with the product API.
// The JSON field names follow the API contract.
type Product struct {
	// ID is assigned by the API on first persistence; zero means "new".
	ID          int64    `json:"id,omitempty"`
	Name        string   `json:"nome"`
	Description string   `json:"descricao"`
	Price       float64  `json:"preco"`
	Category    string   `json:"categoria"`
	Stock       int64    `json:"estoque"`
	Tags        []string `json:"tags"`
}

// IsNew reports whether the product has never been persisted and must be
// created rather than updated.
func (p Product) IsNew() bool {
	return p.ID == 0
}

// String renders a one-line summary for console listings.
func (p Product) String() string {
	category := p.Category
	if category == "" {
		category = "Sem categoria"
	}
	line := fmt.Sprintf("#%d %s [%s] R$ %.2f, %d un.", p.ID, p.Name, category, p.Price, p.Stock)
	if len(p.Tags) > 0 {
		line += " #" + strings.Join(p.Tags, " #")
	}
	return line
}

// ParseTags splits a comma separated tag list, trimming blanks and dropping
// empty items.
func ParseTags(s string) []string {
	tags := make([]string, 0)
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
