package cookware

import (
	"sort"
	"strings"

	"github.com/ppiankov/cookbot/internal/model"
)

// cue maps cooking words to the equipment they usually imply.
// A keyword matches a whole token or its regular inflection ("bake" matches
// "baked" and "baking"), never a longer word ("bread" does not match "breadcrumb").
type cue struct {
	keywords []string
	items    []model.CookwareItem
}

var cues = []cue{
	{[]string{"bake", "roast"}, []model.CookwareItem{Oven}},
	{[]string{"cake"}, []model.CookwareItem{Oven, CakePan, MixingBowl}},
	{[]string{"soup", "stew", "simmer", "boil", "broth", "chowder"}, []model.CookwareItem{Pot}},
	{[]string{"fry", "fried", "saute", "pancake", "omelet", "omelette", "crepe"}, []model.CookwareItem{FryingPan}},
	{[]string{"stirfry", "wok"}, []model.CookwareItem{Wok}},
	{[]string{"whisk", "whip", "whipped", "whipping", "meringue"}, []model.CookwareItem{Whisk}},
	{[]string{"blend", "smoothie", "puree"}, []model.CookwareItem{Blender}},
	{[]string{"grill", "barbecue", "bbq"}, []model.CookwareItem{Grill}},
	{[]string{"pasta", "spaghetti", "noodle", "macaroni", "penne"}, []model.CookwareItem{Pot, Colander}},
	{[]string{"bread", "loaf"}, []model.CookwareItem{Oven, LoafPan}},
	{[]string{"cookie", "pizza", "biscuit"}, []model.CookwareItem{Oven, BakingSheet}},
	{[]string{"casserole", "lasagna", "lasagne", "gratin"}, []model.CookwareItem{Oven, BakingDish}},
	{[]string{"microwave"}, []model.CookwareItem{Microwave}},
}

// inflections are the verb endings a cue keyword may carry
var inflections = []string{"", "s", "d", "ed", "ing"}

// notCues look like inflected cue words but mean something else ("breaded" chicken is fried, not baked)
var notCues = map[string]bool{"breaded": true, "breading": true}

// measureWords name equipment but mostly appear as quantities in recipe text ("1 cup flour")
var measureWords = map[string]bool{"cup": true, "mug": true, "spoon": true, "fork": true}

// itemPhrases holds every known equipment name, longest first so "dutch oven" wins over "oven"
var itemPhrases = func() []string {
	seen := make(map[string]bool)
	for name := range synonyms {
		seen[name] = true
	}
	for item := range substitutes {
		seen[string(item)] = true
		for _, sub := range substitutes[item] {
			seen[string(sub)] = true
		}
	}
	for _, item := range []model.CookwareItem{Oven, Microwave, Stovetop, Grill, Knife, CuttingBoard} {
		seen[string(item)] = true
	}

	phrases := make([]string, 0, len(seen))
	for name := range seen {
		if measureWords[name] {
			continue
		}
		phrases = append(phrases, name)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
	return phrases
}()

// Infer guesses the equipment a recipe needs from its title or description.
// Named equipment comes first, then items implied by cooking words, without duplicates.
func Infer(text string) []model.CookwareItem {
	words := tokens(strings.ReplaceAll(strings.ToLower(text), "stir-fry", "stirfry"))
	for i, w := range words {
		words[i] = singular(w)
	}

	var out []model.CookwareItem
	seen := make(map[model.CookwareItem]bool)
	add := func(item model.CookwareItem) {
		if item != "" && !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}

	padded := " " + strings.Join(words, " ") + " "
	for _, phrase := range itemPhrases {
		needle := " " + phrase + " "
		if strings.Contains(padded, needle) {
			add(Normalize(phrase))
			padded = strings.ReplaceAll(padded, needle, " | ")
		}
	}

	// cooking words are read from what is left after named equipment is consumed
	words = strings.Fields(padded)

	// "stir fry" written as two words
	for i := 0; i+1 < len(words); i++ {
		if words[i] == "stir" && strings.HasPrefix(words[i+1], "fr") {
			words[i] = "stirfry"
			words[i+1] = ""
		}
	}

	for _, c := range cues {
		if matchesAny(words, c.keywords) {
			for _, item := range c.items {
				add(item)
			}
		}
	}
	return out
}

func matchesAny(words, keywords []string) bool {
	for _, w := range words {
		if w == "" || notCues[w] {
			continue
		}
		for _, k := range keywords {
			if inflectionOf(w, k) {
				return true
			}
		}
	}
	return false
}

// inflectionOf reports whether word is keyword with a regular ending, dropping a final e before -ing.
// Words are already singular, so the keyword's plural is folded the same way ("cookies" -> "cooky").
func inflectionOf(word, keyword string) bool {
	if word == singular(keyword+"s") {
		return true
	}
	for _, suffix := range inflections {
		if word == keyword+suffix {
			return true
		}
	}
	if stem, ok := strings.CutSuffix(keyword, "e"); ok {
		return word == stem+"ing"
	}
	return false
}
