package recipes

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ppiankov/cookbot/internal/cookware"
	"github.com/ppiankov/cookbot/internal/model"
)

// catalog is the built-in recipe set served when the search provider is unavailable.
// Equipment lists are explicit so matching does not depend on inference.
var catalog = []model.Recipe{
	{
		Title:     "Classic Chicken Soup",
		Summary:   "Homemade chicken soup with tender chicken, fresh vegetables and herbs in a flavorful broth.",
		Equipment: []model.CookwareItem{cookware.Pot, cookware.Knife, cookware.CuttingBoard, cookware.Ladle},
		Steps: []string{
			"Dice onion, carrots and celery on a cutting board.",
			"Soften the vegetables in a little oil in a large pot over medium heat, about 5 minutes.",
			"Add chicken pieces, 2 liters of water or stock, a bay leaf, salt and pepper.",
			"Bring to a boil, then simmer gently for 40 minutes, skimming the surface.",
			"Lift out the chicken, shred the meat and return it to the pot.",
			"Season to taste and ladle into bowls.",
		},
	},
	{
		Title:     "One-Pot Chicken Soup",
		Summary:   "A quick chicken soup made start to finish in a single pot with rotisserie chicken and boxed broth.",
		Equipment: []model.CookwareItem{cookware.Pot},
		Steps: []string{
			"Warm a splash of oil in a pot and add a bag of pre-cut soup vegetables.",
			"Cook for 5 minutes, stirring now and then.",
			"Pour in 1.5 liters of chicken broth and bring to a simmer.",
			"Tear in the meat from a rotisserie chicken by hand.",
			"Simmer for 15 minutes, season with salt, pepper and lemon juice, and serve.",
		},
	},
	{
		Title:     "Chicken Noodle Soup",
		Summary:   "Comforting chicken noodle soup with garlic, ginger and egg noodles.",
		Equipment: []model.CookwareItem{cookware.Pot, cookware.Ladle, cookware.Knife},
		Steps: []string{
			"Slice garlic and ginger and sweat them in a pot with a little oil.",
			"Add chicken thighs and 2 liters of stock; simmer for 25 minutes.",
			"Remove the chicken, slice it and return it to the pot.",
			"Add egg noodles and cook until tender, about 6 minutes.",
			"Ladle into bowls and finish with spring onions.",
		},
	},
	{
		Title:     "Traditional Chocolate Cake",
		Summary:   "A classic two-layer chocolate sponge baked in the oven.",
		Equipment: []model.CookwareItem{cookware.Oven, cookware.CakePan, cookware.MixingBowl, cookware.Whisk},
		Steps: []string{
			"Heat the oven to 180°C and grease two cake pans.",
			"Whisk flour, cocoa, sugar, baking powder and salt in a mixing bowl.",
			"Whisk in eggs, milk, oil and vanilla, then hot water, until smooth.",
			"Divide between the pans and bake for 30 to 35 minutes.",
			"Cool completely before frosting.",
		},
	},
	{
		Title:     "Chocolate Mug Cake",
		Summary:   "A single-serving chocolate cake cooked in a mug in the microwave.",
		Equipment: []model.CookwareItem{cookware.Microwave, cookware.Mug, cookware.Spoon},
		Steps: []string{
			"Stir 4 tablespoons flour, 2 cocoa, 3 sugar and a pinch of baking powder in a large mug.",
			"Stir in 3 tablespoons milk and 2 of oil until smooth.",
			"Microwave on high for 70 to 90 seconds.",
		},
	},
	{
		Title:     "Spaghetti with Tomato Sauce",
		Summary:   "Weeknight spaghetti with a simple garlic and tomato sauce.",
		Equipment: []model.CookwareItem{cookware.Pot, cookware.Colander, cookware.Saucepan, cookware.Spoon},
		Steps: []string{
			"Boil spaghetti in a large pot of salted water until al dente.",
			"Meanwhile, soften sliced garlic in olive oil in a saucepan and add crushed tomatoes.",
			"Simmer the sauce for 10 minutes and season.",
			"Drain the pasta in a colander and toss with the sauce.",
		},
	},
	{
		Title:     "Fluffy Pancakes",
		Summary:   "Thick buttermilk-style pancakes cooked in a frying pan.",
		Equipment: []model.CookwareItem{cookware.MixingBowl, cookware.Whisk, cookware.FryingPan, cookware.Spatula},
		Steps: []string{
			"Whisk flour, sugar, baking powder and salt in a mixing bowl.",
			"Whisk in milk, egg and melted butter until just combined.",
			"Cook ladlefuls in a buttered frying pan until bubbles form, then flip with a spatula.",
		},
	},
	{
		Title:     "French Omelette",
		Summary:   "A soft, rolled omelette with butter and herbs.",
		Equipment: []model.CookwareItem{cookware.MixingBowl, cookware.Whisk, cookware.FryingPan, cookware.Spatula},
		Steps: []string{
			"Whisk three eggs with a pinch of salt in a bowl.",
			"Melt butter in a frying pan over medium heat.",
			"Add the eggs and stir quickly until just set.",
			"Roll the omelette with a spatula and slide onto a plate.",
		},
	},
	{
		Title:     "Vegetable Stir-Fry",
		Summary:   "Crisp vegetables stir-fried with soy, garlic and ginger.",
		Equipment: []model.CookwareItem{cookware.Wok, cookware.Knife, cookware.CuttingBoard, cookware.Spatula},
		Steps: []string{
			"Slice vegetables thinly on a cutting board.",
			"Heat oil in a wok until shimmering.",
			"Stir-fry garlic and ginger for 30 seconds, then the vegetables for 3 minutes.",
			"Add soy sauce and a splash of water and toss until glossy.",
		},
	},
	{
		Title:     "Creamy Scrambled Eggs",
		Summary:   "Slow-cooked scrambled eggs with butter.",
		Equipment: []model.CookwareItem{cookware.MixingBowl, cookware.Whisk, cookware.FryingPan, cookware.Spatula},
		Steps: []string{
			"Whisk eggs with a pinch of salt.",
			"Melt butter in a frying pan over low heat.",
			"Add the eggs and stir gently with a spatula until softly set.",
		},
	},
	{
		Title:     "Stovetop Rice",
		Summary:   "Fluffy long-grain rice cooked by the absorption method.",
		Equipment: []model.CookwareItem{cookware.Saucepan},
		Steps: []string{
			"Rinse one cup of rice until the water runs clear.",
			"Add rice and 1.5 cups of water to a saucepan with a pinch of salt.",
			"Bring to a boil, cover, and cook on the lowest heat for 15 minutes.",
			"Rest off the heat for 5 minutes and fluff with a fork.",
		},
	},
	{
		Title:     "Beef Stew",
		Summary:   "Slow-simmered beef stew with root vegetables.",
		Equipment: []model.CookwareItem{cookware.DutchOven, cookware.Knife, cookware.CuttingBoard},
		Steps: []string{
			"Cut beef chuck and root vegetables into chunks.",
			"Brown the beef in batches in a dutch oven.",
			"Add vegetables, tomato paste and stock to cover.",
			"Cover and simmer gently for 2 hours until tender.",
		},
	},
}

// stopwords never count towards a catalog match
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "with": true, "for": true, "of": true,
	"to": true, "in": true, "my": true, "i": true, "how": true, "do": true, "make": true,
	"recipe": true, "some": true, "easy": true, "simple": true, "quick": true, "best": true,
}

// Catalog returns built-in recipes loosely matching term, best match first.
// When nothing matches, one generic placeholder for the term is returned, so the result is never empty.
// The placeholder has no steps and is marked Generic so it is never presented as a tested recipe.
func Catalog(term string) []model.Recipe {
	want := keywords(term)

	type scored struct {
		recipe model.Recipe
		score  int
	}
	var hits []scored
	for _, recipe := range catalog {
		have := keywords(recipe.Title)
		score := 0
		for w := range want {
			if have[w] {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{recipe: recipe, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) == 0 {
		return []model.Recipe{genericRecipe(term)}
	}

	out := make([]model.Recipe, len(hits))
	for i, h := range hits {
		out[i] = h.recipe
	}
	return out
}

func genericRecipe(term string) model.Recipe {
	name := strings.TrimSpace(term)
	if name == "" {
		name = "home cooking"
	}
	return model.Recipe{
		Title:     titleCase(name),
		Summary:   "I don't have a tested recipe for " + name + " in my built-in collection.",
		Equipment: cookware.Infer(name),
		Generic:   true,
	}
}

// keywords returns the significant, roughly singular words of s
func keywords(s string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]bool, len(words))
	for _, w := range words {
		if stopwords[w] {
			continue
		}
		if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			w = strings.TrimSuffix(w, "s")
		}
		out[w] = true
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
