package shopping

import "strings"

// KeywordRule maps a lowercase substring of an ingredient name to a section.
type KeywordRule struct {
	Keyword string
	Section Section
}

// DefaultKeywordRules is ordered; the first matching keyword wins, so
// specific words ("eggplant", "steak") sit ahead of the generic ones they
// contain ("egg", "tea").
var DefaultKeywordRules = []KeywordRule{
	{"frozen", SectionFrozen},
	{"ice cream", SectionFrozen},

	{"cleaning", SectionHousehold},
	{"detergent", SectionHousehold},
	{"paper towel", SectionHousehold},
	{"trash bag", SectionHousehold},
	{"dish soap", SectionHousehold},
	{"sponge", SectionHousehold},
	{"foil", SectionHousehold},

	{"eggplant", SectionProduce},
	{"watermelon", SectionProduce},
	{"watercress", SectionProduce},
	{"coconut water", SectionBeverages},
	{"peanut butter", SectionPantry},
	{"apple juice", SectionBeverages},
	{"orange juice", SectionBeverages},
	{"apple cider vinegar", SectionPantry},
	{"ginger ale", SectionBeverages},

	{"chicken", SectionMeat},
	{"beef", SectionMeat},
	{"steak", SectionMeat},
	{"pork", SectionMeat},
	{"turkey", SectionMeat},
	{"lamb", SectionMeat},
	{"bacon", SectionMeat},
	{"sausage", SectionMeat},
	{"salmon", SectionMeat},
	{"tuna", SectionMeat},
	{"shrimp", SectionMeat},
	{"fish", SectionMeat},
	{"cod", SectionMeat},
	{"crab", SectionMeat},

	{"milk", SectionDairy},
	{"cheese", SectionDairy},
	{"butter", SectionDairy},
	{"yogurt", SectionDairy},
	{"cream", SectionDairy},
	{"egg", SectionDairy},

	{"lettuce", SectionProduce},
	{"tomato", SectionProduce},
	{"onion", SectionProduce},
	{"garlic", SectionProduce},
	{"potato", SectionProduce},
	{"carrot", SectionProduce},
	{"bell pepper", SectionProduce},
	{"apple", SectionProduce},
	{"banana", SectionProduce},
	{"lemon", SectionProduce},
	{"lime", SectionProduce},
	{"spinach", SectionProduce},
	{"broccoli", SectionProduce},
	{"celery", SectionProduce},
	{"cucumber", SectionProduce},
	{"avocado", SectionProduce},
	{"basil", SectionProduce},
	{"cilantro", SectionProduce},
	{"parsley", SectionProduce},
	{"ginger", SectionProduce},
	{"mushroom", SectionProduce},
	{"berries", SectionProduce},
	{"zucchini", SectionProduce},

	{"rice", SectionPantry},
	{"pasta", SectionPantry},
	{"noodle", SectionPantry},
	{"flour", SectionPantry},
	{"sugar", SectionPantry},
	{"salt", SectionPantry},
	{"oil", SectionPantry},
	{"vinegar", SectionPantry},
	{"bean", SectionPantry},
	{"lentil", SectionPantry},
	{"broth", SectionPantry},
	{"stock", SectionPantry},
	{"sauce", SectionPantry},
	{"spice", SectionPantry},
	{"cereal", SectionPantry},
	{"oats", SectionPantry},
	{"honey", SectionPantry},
	{"bread", SectionPantry},

	{"water", SectionBeverages},
	{"juice", SectionBeverages},
	{"coffee", SectionBeverages},
	{"tea", SectionBeverages},
	{"soda", SectionBeverages},
	{"wine", SectionBeverages},
	{"beer", SectionBeverages},

	{"chips", SectionSnacks},
	{"crackers", SectionSnacks},
	{"cookies", SectionSnacks},
	{"popcorn", SectionSnacks},
	{"pretzel", SectionSnacks},
}

// Classifier maps ingredient names to store sections by keyword.
type Classifier struct {
	rules []KeywordRule
}

// NewClassifier copies rules, lowercasing keywords. Nil selects
// DefaultKeywordRules.
func NewClassifier(rules []KeywordRule) *Classifier {
	if rules == nil {
		rules = DefaultKeywordRules
	}
	copied := make([]KeywordRule, 0, len(rules))
	for _, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		copied = append(copied, KeywordRule{Keyword: kw, Section: r.Section})
	}
	return &Classifier{rules: copied}
}

// Classify returns the section of the first rule whose keyword occurs in
// name, or SectionOther.
func (c *Classifier) Classify(name string) Section {
	lower := strings.ToLower(name)
	for _, r := range c.rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Section
		}
	}
	return SectionOther
}
