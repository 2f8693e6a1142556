package recipe

// 常備食材、料理風格與飲食限制的固定目錄
var (
	Staples        = []string{"Oil", "Flour", "Salt", "Butter", "Sugar"}
	Cuisines       = []string{"Italian", "Mexican", "Japanese", "Indian", "French"}
	DietaryOptions = []string{"Vegan", "Gluten-Free", "Nut-Free", "Dairy-Free", "Vegetarian"}
)

// Catalog 回傳目錄副本
func Catalog() Options {
	return Options{
		Staples:  append([]string(nil), Staples...),
		Cuisines: append([]string(nil), Cuisines...),
		Dietary:  append([]string(nil), DietaryOptions...),
	}
}
