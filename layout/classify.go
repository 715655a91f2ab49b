package layout

import (
	"strings"
	"unicode"
)

// Category buckets a column by how much text it usually carries.
type Category string

const (
	Narrow    Category = "narrow"
	Medium    Category = "medium"
	Wide      Category = "wide"
	ExtraWide Category = "extra_wide"
	Standard  Category = "standard"
)

// Categories lists every category, narrowest first.
func Categories() []Category {
	return []Category{Narrow, Medium, Wide, ExtraWide, Standard}
}

const idKeyword = "id"

type classifyRule struct {
	category Category
	keywords []string
}

// Rules are checked in order; the first one with a matching keyword wins.
var classifyRules = []classifyRule{
	{category: Narrow, keywords: []string{idKeyword, "code", "status", "num"}},
	{category: Medium, keywords: []string{"date", "amount", "price", "category", "type", "method"}},
	{category: Wide, keywords: []string{"name", "title", "project", "organization"}},
	{category: ExtraWide, keywords: []string{"description", "comment", "email", "address", "skills"}},
}

// ClassifyColumn assigns a category to a header label. Keywords match
// anywhere in the lower-cased label, so "birthdate" is medium and "zipcode"
// narrow. The two-letter "id" only matches a label token it starts, so
// "donorId" is narrow but "paid" is not.
func ClassifyColumn(label string) Category {
	lower := strings.ToLower(label)
	var tokens []string
	for _, rule := range classifyRules {
		for _, keyword := range rule.keywords {
			if keyword != idKeyword {
				if strings.Contains(lower, keyword) {
					return rule.category
				}
				continue
			}
			if tokens == nil {
				tokens = labelTokens(label)
			}
			for _, token := range tokens {
				if strings.HasPrefix(token, idKeyword) {
					return rule.category
				}
			}
		}
	}
	return Standard
}

// ClassifyColumns classifies every label, keeping order.
func ClassifyColumns(labels []string) []ColumnDescriptor {
	columns := make([]ColumnDescriptor, len(labels))
	for i, label := range labels {
		columns[i] = ColumnDescriptor{Label: label, Category: ClassifyColumn(label)}
	}
	return columns
}

// labelTokens lower-cases label and splits it on non-alphanumeric runes and
// camelCase boundaries.
func labelTokens(label string) []string {
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(label)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return tokens
}

// HumanizeLabel turns a field name into a display label:
// "full_name" and "fullName" both become "Full Name".
func HumanizeLabel(field string) string {
	tokens := labelTokens(field)
	for i, token := range tokens {
		runes := []rune(token)
		runes[0] = unicode.ToUpper(runes[0])
		if token == "id" {
			runes = []rune("ID")
		}
		tokens[i] = string(runes)
	}
	return strings.Join(tokens, " ")
}
