package extractor

import "carvalue/internal/model"

// pair is one ordered lookup entry. The tables below are scanned in order
// and the first hit wins, so they must stay slices.
type pair struct {
	key   string
	value string
}

// makes is the known manufacturer vocabulary (lower case)
var makes = []string{
	"toyota",
	"honda",
	"ford",
	"chevrolet",
	"hyundai",
	"kia",
	"bmw",
	"audi",
	"mercedes",
	"volkswagen",
	"nissan",
	"mazda",
	"subaru",
	"lexus",
	"jeep",
	"tesla",
}

// models maps a keyword found in text to its canonical model name.
// Misspellings map to the same canonical value.
var models = []pair{
	{"innova", "Innova"},
	{"creta", "Creta"},
	{"creata", "Creta"},
	{"camry", "Camry"},
	{"civic", "Civic"},
	{"corolla", "Corolla"},
	{"fortuner", "Fortuner"},
	{"city", "City"},
	{"swift", "Swift"},
	{"baleno", "Baleno"},
	{"i20", "i20"},
	{"i10", "i10"},
	{"verna", "Verna"},
	{"seltos", "Seltos"},
	{"sonet", "Sonet"},
}

// modelMakes backfills the make from a canonical model name
var modelMakes = []pair{
	{"Innova", "Toyota"},
	{"Fortuner", "Toyota"},
	{"Camry", "Toyota"},
	{"Corolla", "Toyota"},
	{"Creta", "Hyundai"},
	{"i20", "Hyundai"},
	{"i10", "Hyundai"},
	{"Verna", "Hyundai"},
	{"Civic", "Honda"},
	{"City", "Honda"},
	{"Swift", "Suzuki"},
	{"Baleno", "Suzuki"},
	{"Seltos", "Kia"},
	{"Sonet", "Kia"},
}

type conditionSynonyms struct {
	condition model.Condition
	keywords  []string
}

// synonyms is pass A of condition detection
var synonyms = []conditionSynonyms{
	{model.ConditionExcellent, []string{"excellent", "perfect", "mint", "like new"}},
	{model.ConditionGood, []string{"good", "nice", "well maintained"}},
	{model.ConditionFair, []string{"fair", "average", "okay", "ok"}},
	{model.ConditionPoor, []string{"poor", "bad", "needs work", "damaged"}},
}

// MakeForModel returns the manufacturer of a canonical model name
func MakeForModel(canonical string) (string, bool) {
	for _, p := range modelMakes {
		if p.key == canonical {
			return p.value, true
		}
	}
	return "", false
}

// KnownMakes returns the manufacturer vocabulary in canonical capitalization
func KnownMakes() []string {
	out := make([]string, len(makes))
	for i, m := range makes {
		out[i] = capitalize(m)
	}
	return out
}
