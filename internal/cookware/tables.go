package cookware

import "github.com/ppiankov/cookbot/internal/model"

const (
	Oven         model.CookwareItem = "oven"
	Microwave    model.CookwareItem = "microwave"
	Stovetop     model.CookwareItem = "stovetop"
	Grill        model.CookwareItem = "grill"
	Pot          model.CookwareItem = "pot"
	Stockpot     model.CookwareItem = "stockpot"
	DutchOven    model.CookwareItem = "dutch oven"
	Saucepan     model.CookwareItem = "saucepan"
	FryingPan    model.CookwareItem = "frying pan"
	SautePan     model.CookwareItem = "saute pan"
	Wok          model.CookwareItem = "wok"
	CakePan      model.CookwareItem = "cake pan"
	LoafPan      model.CookwareItem = "loaf pan"
	BakingDish   model.CookwareItem = "baking dish"
	BakingSheet  model.CookwareItem = "baking sheet"
	MixingBowl   model.CookwareItem = "mixing bowl"
	Whisk        model.CookwareItem = "whisk"
	Fork         model.CookwareItem = "fork"
	Spoon        model.CookwareItem = "spoon"
	Spatula      model.CookwareItem = "spatula"
	Ladle        model.CookwareItem = "ladle"
	Cup          model.CookwareItem = "cup"
	Mug          model.CookwareItem = "mug"
	Knife        model.CookwareItem = "knife"
	CuttingBoard model.CookwareItem = "cutting board"
	Colander     model.CookwareItem = "colander"
	Sieve        model.CookwareItem = "sieve"
	Blender      model.CookwareItem = "blender"
	FoodProc     model.CookwareItem = "food processor"
	StandMixer   model.CookwareItem = "stand mixer"
	HandMixer    model.CookwareItem = "hand mixer"
)

// synonyms folds alternative names (already lower-case and singular) onto one canonical item
var synonyms = map[string]model.CookwareItem{
	"heavy pot":         DutchOven,
	"cast iron pot":     DutchOven,
	"french oven":       DutchOven,
	"skillet":           FryingPan,
	"cast iron skillet": FryingPan,
	"fry pan":           FryingPan,
	"frypan":            FryingPan,
	"pan":               FryingPan,
	"little pot":        Saucepan,
	"small pot":         Saucepan,
	"sauce pan":         Saucepan,
	"stove":             Stovetop,
	"stove top":         Stovetop,
	"hob":               Stovetop,
	"cooktop":           Stovetop,
	"burner":            Stovetop,
	"sheet pan":         BakingSheet,
	"cookie sheet":      BakingSheet,
	"baking tray":       BakingSheet,
	"cake tin":          CakePan,
	"loaf tin":          LoafPan,
	"casserole dish":    BakingDish,
	"bowl":              MixingBowl,
	"chefs knife":       Knife,
	"chef knife":        Knife,
	"wooden spoon":      Spoon,
	"soup pot":          Pot,
	"big pot":           Pot,
	"large pot":         Pot,
	"stock pot":         Stockpot,
	"strainer":          Colander,
	"mesh strainer":     Sieve,
	"chopping board":    CuttingBoard,
	"microwave oven":    Microwave,
	"mixer":             HandMixer,
	"electric mixer":    HandMixer,
}

// substitutes lists, in preference order, the items approved to stand in for a required item.
// Items absent from the table (oven, knife, microwave, ...) have no substitute.
var substitutes = map[model.CookwareItem][]model.CookwareItem{
	DutchOven:   {Pot, Stockpot},
	Stockpot:    {Pot, DutchOven},
	Pot:         {DutchOven, Stockpot, Saucepan},
	Saucepan:    {Pot},
	FryingPan:   {SautePan, Wok},
	SautePan:    {FryingPan},
	Wok:         {FryingPan},
	Whisk:       {Fork},
	Ladle:       {Cup, Spoon},
	Spatula:     {Spoon},
	CakePan:     {BakingDish, LoafPan},
	LoafPan:     {CakePan, BakingDish},
	MixingBowl:  {Pot},
	Colander:    {Sieve},
	Sieve:       {Colander},
	BakingSheet: {BakingDish},
	BakingDish:  {CakePan},
	StandMixer:  {HandMixer, Whisk},
	HandMixer:   {Whisk},
	Blender:     {FoodProc},
	FoodProc:    {Blender},
	Mug:         {Cup},
	Cup:         {Mug},
}

// Substitutes returns the approved substitutes for item in preference order
func Substitutes(item model.CookwareItem) []model.CookwareItem {
	subs := substitutes[item]
	out := make([]model.CookwareItem, len(subs))
	copy(out, subs)
	return out
}
