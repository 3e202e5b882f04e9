package recipes

import (
	"strings"
)

// cookwareClauses end the dish part of a query ("chicken soup with the cookware I have")
var cookwareClauses = []string{
	" with the cookware",
	" with cookware",
	" with my cookware",
	" with the equipment",
	" with the tools",
	" with what i have",
	" with what i've got",
	" with what ive got",
	" with only ",
	" with just ",
	" with my ",
	" using the cookware",
	" using my ",
	" using only ",
	" using just ",
	" given my ",
	" if i only have",
	" if i have",
	" when i only have",
}

// scaffolding is stripped from the front of a query, repeatedly
var scaffolding = []string{
	"how do i ", "how can i ", "how should i ", "how to ", "how would i ",
	"can you ", "could you ", "would you ", "please ",
	"give me ", "show me ", "find me ", "tell me how to ", "help me ",
	"i want to ", "i'd like to ", "id like to ", "i would like to ", "i need ",
	"what's a good ", "whats a good ", "what is a good ",
	"a recipe for ", "recipes for ", "recipe for ",
	"make me ", "make ", "cook ", "prepare ",
	"a ", "an ", "some ",
}

// TermFromQuery reduces a natural-language recipe request to a search term:
// question scaffolding and cookware clauses are removed, the dish is kept.
func TermFromQuery(text string) string {
	original := strings.TrimSpace(text)
	term := strings.ToLower(original)
	term = strings.TrimRight(term, "?!. ")

	for _, clause := range cookwareClauses {
		if i := strings.Index(term, clause); i > 0 {
			term = term[:i]
		}
	}

	for stripped := true; stripped; {
		stripped = false
		for _, prefix := range scaffolding {
			if strings.HasPrefix(term, prefix) {
				term = strings.TrimSpace(strings.TrimPrefix(term, prefix))
				stripped = true
			}
		}
	}

	term = strings.TrimSuffix(term, " recipes")
	term = strings.TrimSuffix(term, " recipe")
	term = strings.TrimSpace(term)

	if term == "" {
		return strings.ToLower(strings.TrimRight(original, "?!. "))
	}
	return term
}

// recipeQuery is the provider query for a recipe term
func recipeQuery(term string) string {
	q := strings.ToLower(strings.TrimSpace(term))
	if !strings.Contains(q, "recipe") {
		q += " recipe"
	}
	return q
}
