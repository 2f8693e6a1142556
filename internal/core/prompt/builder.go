package prompt

import (
	"strings"

	"recipe-lens/internal/pkg/common"
)

// Parameters 使用者選擇的生成參數
type Parameters struct {
	Ingredients []string `json:"ingredients"`
	Cuisines    []string `json:"cuisines"`
	Dietary     []string `json:"dietary"`
	Context     string   `json:"context"`
}

// inputParams 序列化到提示詞中的參數，欄位順序固定
type inputParams struct {
	Cuisine             string   `json:"cuisine"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	KeyIngredients      []string `json:"key_ingredients"`
	AdditionalContext   string   `json:"additional_context"`
}

// outputRecipe 範例輸出格式
type outputRecipe struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

type example struct {
	input  inputParams
	output outputRecipe
}

const (
	instruction = "You are an expert recipe generator. Given the following input parameters, " +
		"return a recipe as a JSON object with these keys: title (short string), " +
		"ingredients (array of strings), instructions (array of short, clear, and explanatory steps). " +
		"Each instruction should explain what to do in simple language, but avoid unnecessary length."

	// OutputCue 提示詞結尾的輸出提示
	OutputCue = "Output JSON:"

	anyCuisine = "any"
	noContext  = "none"
)

var examples = []example{
	{
		input: inputParams{
			Cuisine:             "Italian",
			DietaryRestrictions: []string{"Vegan"},
			KeyIngredients:      []string{"Tomato", "Basil", "Pasta"},
			AdditionalContext:   "Quick",
		},
		output: outputRecipe{
			Title:       "Vegan Pasta",
			Ingredients: []string{"200g pasta", "2 tomatoes", "Fresh basil", "Olive oil"},
			Instructions: []string{
				"Boil pasta until tender.",
				"Chop tomatoes and cook with olive oil to make a sauce.",
				"Mix pasta with sauce and top with fresh basil.",
			},
		},
	},
	{
		input: inputParams{
			Cuisine:             "Asian",
			DietaryRestrictions: []string{},
			KeyIngredients:      []string{"Chicken", "Rice", "Broccoli"},
			AdditionalContext:   "Simple",
		},
		output: outputRecipe{
			Title:       "Chicken Rice",
			Ingredients: []string{"1 cup rice", "1 chicken breast", "1 cup broccoli", "Soy sauce"},
			Instructions: []string{
				"Cook rice according to package instructions.",
				"Cut chicken and broccoli into pieces and stir-fry until cooked.",
				"Mix with rice and soy sauce, then serve.",
			},
		},
	},
}

// 範例區塊不隨輸入變動，啟動時渲染一次
var examplesBlock = renderExamples()

func renderExamples() string {
	var b strings.Builder
	for _, ex := range examples {
		in, err := common.ToJSON(ex.input)
		if err != nil {
			panic(err)
		}
		out, err := common.ToIndentedJSON(ex.output)
		if err != nil {
			panic(err)
		}
		b.WriteString("Input Parameters: ")
		b.WriteString(in)
		b.WriteString("\n" + OutputCue + "\n")
		b.WriteString(out)
		b.WriteString("\n---\n")
	}
	return b.String()
}

// Build 組合食譜生成提示詞
func Build(p Parameters) string {
	params, err := common.ToJSON(normalize(p))
	if err != nil {
		// 僅含字串與字串切片，不會發生
		panic(err)
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nExample:\n")
	b.WriteString(examplesBlock)
	b.WriteString("Input Parameters: ")
	b.WriteString(params)
	b.WriteString("\n" + OutputCue)
	return b.String()
}

func normalize(p Parameters) inputParams {
	cuisine := anyCuisine
	if len(p.Cuisines) > 0 {
		cuisine = strings.Join(p.Cuisines, ",")
	}

	context := p.Context
	if strings.TrimSpace(context) == "" {
		context = noContext
	}

	return inputParams{
		Cuisine:             cuisine,
		DietaryRestrictions: nonNil(p.Dietary),
		KeyIngredients:      nonNil(p.Ingredients),
		AdditionalContext:   context,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
