package catalog

// TraitClass partitions the trait catalog.
type TraitClass uint8

const (
	TraitPositive TraitClass = iota
	TraitNegative
	TraitNeutral
)

// Trait is one NPC personality trait.
type Trait struct {
	Name  string
	Class TraitClass
}

// traitNames builds the 104-entry trait catalog: 40 positive, 40 negative,
// 24 neutral. Order is load order; NPC generation samples by index, so the
// order is part of the determinism contract.
var positiveTraits = []string{
	"brave", "honest", "loyal", "generous", "kind",
	"patient", "diligent", "cheerful", "humble", "wise",
	"compassionate", "resourceful", "courteous", "steadfast", "observant",
	"witty", "temperate", "devout", "charitable", "forthright",
	"industrious", "merciful", "prudent", "gallant", "gracious",
	"earnest", "stalwart", "hospitable", "scholarly", "eloquent",
	"vigilant", "fair-minded", "tenacious", "nurturing", "even-tempered",
	"frugal", "inventive", "discreet", "openhanded", "lionhearted",
}

var negativeTraits = []string{
	"cruel", "greedy", "deceitful", "cowardly", "lazy",
	"arrogant", "spiteful", "jealous", "reckless", "vindictive",
	"sullen", "treacherous", "gluttonous", "vain", "callous",
	"paranoid", "quarrelsome", "miserly", "slothful", "duplicitous",
	"wrathful", "craven", "boorish", "scheming", "petty",
	"resentful", "obstinate", "contemptuous", "dishonest", "venal",
	"brutish", "faithless", "manipulative", "bitter", "domineering",
	"slovenly", "covetous", "malicious", "two-faced", "cold-hearted",
}

var neutralTraits = []string{
	"quiet", "talkative", "superstitious", "ambitious", "curious",
	"stubborn", "dreamy", "blunt", "secretive", "restless",
	"nostalgic", "pragmatic", "fatalistic", "eccentric", "solemn",
	"flamboyant", "aloof", "sentimental", "skeptical", "impulsive",
	"meticulous", "brooding", "garrulous", "wandering",
}

func buildTraits() []Trait {
	traits := make([]Trait, 0, len(positiveTraits)+len(negativeTraits)+len(neutralTraits))
	for _, n := range positiveTraits {
		traits = append(traits, Trait{Name: n, Class: TraitPositive})
	}
	for _, n := range negativeTraits {
		traits = append(traits, Trait{Name: n, Class: TraitNegative})
	}
	for _, n := range neutralTraits {
		traits = append(traits, Trait{Name: n, Class: TraitNeutral})
	}
	return traits
}
