package cookware

import (
	"strings"
	"unicode"

	"github.com/ppiankov/cookbot/internal/model"
)

// leadingFillers are dropped from the front of a cookware name ("my big pot" keeps "big")
var leadingFillers = map[string]bool{
	"a": true, "an": true, "the": true, "my": true, "one": true, "some": true, "your": true,
}

// pluralInvariant words end in "s" but are already singular
var pluralInvariant = map[string]bool{
	"tongs": true, "scissors": true, "shears": true, "chopsticks": true, "glass": true, "gas": true,
}

// Normalize maps a free-form equipment name to its canonical CookwareItem:
// lower-cased, punctuation and leading articles removed, head noun singular, synonyms folded.
// Normalize is idempotent.
func Normalize(name string) model.CookwareItem {
	words := tokens(name)
	for len(words) > 0 && leadingFillers[words[0]] {
		words = words[1:]
	}
	if len(words) == 0 {
		return ""
	}
	words[len(words)-1] = singular(words[len(words)-1])

	item := strings.Join(words, " ")
	if canonical, ok := synonyms[item]; ok {
		return canonical
	}
	return model.CookwareItem(item)
}

// NormalizeAll normalizes names, dropping blanks and duplicates while keeping order
func NormalizeAll(names []string) []model.CookwareItem {
	out := make([]model.CookwareItem, 0, len(names))
	seen := make(map[model.CookwareItem]bool, len(names))
	for _, name := range names {
		item := Normalize(name)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// tokens lower-cases s, drops apostrophes and splits on anything that is not a letter or digit
func tokens(s string) []string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func singular(word string) string {
	if len(word) <= 3 || pluralInvariant[word] {
		return word
	}
	switch {
	case strings.HasSuffix(word, "ives"):
		return strings.TrimSuffix(word, "ives") + "ife"
	case strings.HasSuffix(word, "ies"):
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "sses"),
		strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "xes"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		return strings.TrimSuffix(word, "s")
	}
	return word
}
