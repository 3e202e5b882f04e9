package recipes

import (
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// blockTags separate words when tags are removed
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true, "tr": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// StripHTML returns the visible text of an HTML fragment with entities decoded and whitespace collapsed
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				b.WriteByte(' ')
			}
		}
	}
}

// pageRecipe holds what a recipe page's schema.org markup adds to a search hit
type pageRecipe struct {
	Steps []string
	Tools []string
}

// extractPageRecipe finds the first schema.org Recipe in the page's JSON-LD blocks
func extractPageRecipe(r io.Reader) (*pageRecipe, bool) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, false
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && isJSONLD(n) {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				blocks = append(blocks, n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, block := range blocks {
		if !gjson.Valid(block) {
			continue
		}
		if recipe, ok := findRecipe(gjson.Parse(block)); ok {
			return parseRecipeNode(recipe), true
		}
	}
	return nil, false
}

func isJSONLD(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "type" && strings.EqualFold(strings.TrimSpace(attr.Val), "application/ld+json") {
			return true
		}
	}
	return false
}

// findRecipe searches a JSON-LD value (object, array or @graph) for a node typed Recipe
func findRecipe(v gjson.Result) (gjson.Result, bool) {
	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			if r, ok := findRecipe(item); ok {
				return r, true
			}
		}
	case v.IsObject():
		if hasType(v.Get("@type"), "Recipe") {
			return v, true
		}
		if graph := v.Get("@graph"); graph.Exists() {
			return findRecipe(graph)
		}
	}
	return gjson.Result{}, false
}

func hasType(t gjson.Result, want string) bool {
	if t.IsArray() {
		for _, item := range t.Array() {
			if item.String() == want {
				return true
			}
		}
		return false
	}
	return t.String() == want
}

func parseRecipeNode(node gjson.Result) *pageRecipe {
	out := &pageRecipe{}
	collectSteps(node.Get("recipeInstructions"), &out.Steps)

	tools := node.Get("tool")
	items := []gjson.Result{tools}
	if tools.IsArray() {
		items = tools.Array()
	}
	for _, t := range items {
		name := t.String()
		if t.IsObject() {
			name = t.Get("name").String()
		}
		if name = StripHTML(name); name != "" {
			out.Tools = append(out.Tools, name)
		}
	}
	return out
}

// collectSteps flattens text, HowToStep and HowToSection instructions in order
func collectSteps(v gjson.Result, steps *[]string) {
	switch {
	case !v.Exists():
		return
	case v.IsArray():
		for _, item := range v.Array() {
			collectSteps(item, steps)
		}
	case v.IsObject():
		if list := v.Get("itemListElement"); list.Exists() {
			collectSteps(list, steps)
			return
		}
		if text := StripHTML(v.Get("text").String()); text != "" {
			*steps = append(*steps, text)
		}
	default:
		for _, line := range strings.Split(v.String(), "\n") {
			if text := StripHTML(line); text != "" {
				*steps = append(*steps, text)
			}
		}
	}
}
