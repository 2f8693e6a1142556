package ingredient

import (
	"regexp"
	"strings"
)

// foodTerms 食材詞彙表，皆為小寫且無前後空白
var foodTerms = []string{
	// 水果
	"apple", "banana", "orange", "grape", "berry", "strawberry", "blueberry", "raspberry",
	"blackberry", "cherry", "pear", "plum", "peach", "apricot", "fig", "date", "kiwi",
	"mango", "papaya", "pineapple", "melon", "watermelon", "cantaloupe", "honeydew",
	"pomegranate", "guava", "lychee", "passion fruit", "dragon fruit", "jackfruit",
	"avocado",
	// 蔬菜
	"potato", "tomato", "onion", "garlic", "carrot", "pepper", "lettuce", "cabbage",
	"broccoli", "spinach", "corn", "pea", "mushroom", "cucumber", "zucchini", "eggplant",
	"pumpkin", "squash", "okra", "artichoke", "asparagus", "beet", "brussels sprout",
	"cauliflower", "celery", "chard", "collard", "daikon", "edamame", "endive", "fennel",
	"jicama", "kale", "leek", "parsnip", "radish", "rutabaga", "shallot", "turnip", "yam",
	"sweet potato", "watercress", "arugula", "bok choy", "chicory", "dandelion", "escarole",
	"frisee", "kohlrabi", "mustard greens", "rapini", "salsify", "scallion", "taro",
	"wasabi",
	// 穀物與澱粉
	"rice", "bread", "pasta", "noodle", "spaghetti", "macaroni", "oat", "barley", "wheat",
	"cornmeal", "couscous", "quinoa", "bulgur", "polenta", "tortilla", "cracker", "bagel",
	"bun", "roll", "biscuit", "croissant", "muffin", "pancake", "waffle", "cereal",
	// 乳製品
	"milk", "cheese", "yogurt", "cream", "butter", "ice cream", "ghee", "paneer", "curd",
	// 肉類與蛋白質
	"meat", "beef", "pork", "lamb", "goat", "veal", "bacon", "ham", "sausage", "salami",
	"turkey", "duck", "goose", "chicken", "egg", "fish", "seafood", "shrimp", "crab",
	"lobster", "shellfish", "octopus", "squid", "anchovy", "sardine", "mackerel", "tuna",
	"salmon", "trout", "cod", "herring", "snapper", "tilapia", "catfish",
	// 豆類、堅果與種子
	"bean", "lentil", "chickpea", "soy", "tofu", "tempeh", "almond", "cashew", "peanut",
	"walnut", "pecan", "hazelnut", "macadamia", "pistachio", "brazil nut", "sunflower seed",
	"pumpkin seed", "chia", "flax", "sesame",
	// 油脂
	"oil", "olive oil", "canola oil", "vegetable oil", "coconut oil", "sesame oil",
	"margarine", "shortening",
	// 香料與調味料
	"spice", "herb", "basil", "cilantro", "parsley", "mint", "rosemary", "thyme", "sage",
	"dill", "coriander", "cumin", "turmeric", "ginger", "cinnamon", "clove", "nutmeg",
	"vanilla", "mustard", "ketchup", "mayonnaise", "vinegar", "soy sauce", "sauce",
	"hot sauce", "barbecue sauce", "jam", "jelly", "honey", "maple syrup", "molasses",
	"chutney", "pesto", "salsa", "relish",
	// 甜味劑
	"sugar", "brown sugar", "cane sugar", "powdered sugar", "corn syrup", "agave", "stevia",
	// 烘焙與加工食品
	"flour", "yeast", "baking powder", "baking soda", "cornstarch", "cookie", "cake", "pie",
	"brownie", "doughnut", "pastry", "granola", "bar", "candy", "chocolate", "marshmallow",
	// 其他
	"salt", "broth", "stock", "bouillon", "gelatin", "seitan", "pickles", "kimchi",
	"sauerkraut", "miso", "tahini", "guacamole", "hummus", "falafel", "samosa",
	"spring roll", "dumpling", "sushi", "pizza", "burger", "sandwich", "wrap", "taco",
	"burrito", "quesadilla", "enchilada", "lasagna", "curry", "stew", "soup", "chowder",
	"goulash", "risotto", "paella", "jambalaya", "casserole", "gratin", "ratatouille",
	"frittata", "omelette", "quiche", "crepe", "fondue", "kabob", "skewer", "satay",
	"meatball", "meatloaf", "patty", "cutlet", "nugget", "strip", "wing", "drumstick",
	"rib", "shank", "loin", "chop", "steak", "roast", "brisket", "tenderloin", "filet",
	"fillet", "medallion", "roulade", "terrine", "pate", "mousse", "souffle", "custard",
	"pudding", "trifle", "tart", "galette", "clafoutis", "crumble", "cobbler", "compote",
	"sorbet", "gelato", "parfait", "milkshake", "smoothie", "frappe", "slush", "popsicle",
	"ice pop", "granita", "sherbet", "frozen yogurt", "energy bar", "protein bar",
	"trail mix", "juice", "soda", "tea", "coffee", "espresso", "latte", "cappuccino",
	"mocha", "chai", "matcha", "kombucha", "wine", "beer", "ale", "lager", "stout",
	"porter", "cider", "mead", "cocktail", "mocktail", "liquor", "spirit", "vodka", "gin",
	"rum", "tequila", "whiskey", "brandy", "cognac", "armagnac", "schnapps", "liqueur",
	"vermouth", "bitters", "aperitif", "digestif", "sherry", "port", "sake", "soju",
	"baijiu", "arak", "ouzo", "raki", "grappa", "calvados", "absinthe",
}

var (
	termSet      map[string]struct{}
	termPatterns []*regexp.Regexp
)

func init() {
	termSet = make(map[string]struct{}, len(foodTerms))
	termPatterns = make([]*regexp.Regexp, len(foodTerms))
	for i, term := range foodTerms {
		termSet[term] = struct{}{}
		// 整字比對，不分大小寫
		termPatterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	}
}

// IsFoodTerm 判斷字串是否為詞彙表中的食材（去除空白並轉小寫後完全相符）
func IsFoodTerm(candidate string) bool {
	_, ok := termSet[strings.ToLower(strings.TrimSpace(candidate))]
	return ok
}

// Vocabulary 回傳詞彙表副本，順序固定
func Vocabulary() []string {
	out := make([]string, len(foodTerms))
	copy(out, foodTerms)
	return out
}
