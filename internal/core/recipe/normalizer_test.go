package recipe

import (
	"testing"

	"recipe-lens/internal/pkg/common"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const soupJSON = `{"title":"Soup","ingredients":["water","salt"],"instructions":["Boil water.","Add salt."]}`

var soup = &Draft{
	Title:        "Soup",
	Ingredients:  []string{"water", "salt"},
	Instructions: []string{"Boil water.", "Add salt."},
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		draft *Draft
		text  string
	}{
		{name: "plain json", raw: soupJSON, draft: soup},
		{name: "json fence", raw: "```json\n" + soupJSON + "\n```", draft: soup},
		{name: "bare fence", raw: "  ```\n" + soupJSON + "\n```  ", draft: soup},
		{name: "output label", raw: "Output JSON:\n" + soupJSON, draft: soup},
		{name: "leading byte order mark", raw: "\ufeff" + soupJSON, draft: soup},
		{name: "byte order mark before fence", raw: " \ufeff```json\n" + soupJSON + "\n```", draft: soup},
		{name: "only byte order mark", raw: "\ufeff", text: NoOutputText},
		{name: "fence then label", raw: "```json\nOutput JSON: " + soupJSON + "\n```", draft: soup},
		{name: "plain text", raw: "Here is a recipe: boil water.", text: "Here is a recipe: boil water."},
		{name: "fenced plain text", raw: "```\nnot json\n```", text: "not json"},
		{name: "empty", raw: "", text: NoOutputText},
		{name: "whitespace", raw: " \n\t ", text: NoOutputText},
		{name: "empty fence", raw: "```json```", text: NoOutputText},
		{name: "trailing garbage", raw: soupJSON + " thanks!", text: soupJSON + " thanks!"},
		{name: "json array", raw: `["a","b"]`, text: `["a","b"]`},
		{name: "json null", raw: "null", text: "null"},
		{name: "missing title", raw: `{"ingredients":[],"instructions":[]}`, text: `{"ingredients":[],"instructions":[]}`},
		{name: "title not string", raw: `{"title":1,"ingredients":[],"instructions":[]}`, text: `{"title":1,"ingredients":[],"instructions":[]}`},
		{name: "ingredients not array", raw: `{"title":"x","ingredients":"salt","instructions":[]}`, text: `{"title":"x","ingredients":"salt","instructions":[]}`},
		{name: "instruction not string", raw: `{"title":"x","ingredients":[],"instructions":[{"step":1}]}`, text: `{"title":"x","ingredients":[],"instructions":[{"step":1}]}`},
		{
			name:  "extra keys ignored",
			raw:   `{"title":"x","servings":2,"ingredients":[],"instructions":[]}`,
			draft: &Draft{Title: "x", Ingredients: []string{}, Instructions: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if tt.draft != nil {
				require.NotNil(t, got.Draft)
				assert.Equal(t, tt.draft, got.Draft)
				assert.Empty(t, got.RawText)
				return
			}
			assert.Nil(t, got.Draft)
			assert.Equal(t, tt.text, got.RawText)
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "abc", Clean("```json\nabc\n```"))
	assert.Equal(t, "abc", Clean("```abc```"))
	assert.Equal(t, "abc\n```\nmore", Clean("```abc\n```\nmore"))
	assert.Equal(t, "x", Clean("Output JSON:x"))
	assert.Equal(t, "abc", Clean("\ufeff\ufeff abc"))
	assert.Equal(t, "Result: Output JSON: x", Clean("Result: Output JSON: x"))
}

func TestNormalizeRoundTripsGeneratedDrafts(t *testing.T) {
	f := gofakeit.New(5)
	for i := 0; i < 50; i++ {
		draft := Draft{
			Title:        f.Sentence(3),
			Ingredients:  []string{f.Fruit(), f.Vegetable(), f.Sentence(2)},
			Instructions: []string{f.Sentence(8), `Say "done" <now> & serve.`},
		}
		text, err := common.ToIndentedJSON(draft)
		require.NoError(t, err)

		got := Normalize("```json\n" + text + "\n```")
		require.NotNil(t, got.Draft)
		assert.Equal(t, draft, *got.Draft)
	}
}

func TestDraftFromJSON(t *testing.T) {
	d, err := DraftFromJSON(soupJSON)
	require.NoError(t, err)
	assert.Equal(t, soup, d)

	_, err = DraftFromJSON(`{"title":"x"}`)
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}
