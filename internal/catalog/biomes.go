package catalog

// Biome is one of the nine macro biomes.
type Biome string

const (
	BiomeUrban    Biome = "urban"
	BiomeRural    Biome = "rural"
	BiomeForest   Biome = "forest"
	BiomeDesert   Biome = "desert"
	BiomeTundra   Biome = "tundra"
	BiomeJungle   Biome = "jungle"
	BiomeCoast    Biome = "coast"
	BiomeMountain Biome = "mountain"
	BiomeWetland  Biome = "wetland"
)

// BiomeOrder is the fixed enumeration order for keyword detection.
// The first biome whose keyword set matches the prompt wins.
var BiomeOrder = []Biome{
	BiomeUrban, BiomeRural, BiomeForest, BiomeDesert, BiomeTundra,
	BiomeJungle, BiomeCoast, BiomeMountain, BiomeWetland,
}

// BiomeKeywords maps each biome to the substrings that select it.
var BiomeKeywords = map[Biome][]string{
	BiomeUrban:    {"city", "street", "alley", "market", "urban", "slum"},
	BiomeRural:    {"farm", "pasture", "meadow", "countryside", "rural", "hamlet"},
	BiomeForest:   {"forest", "woodland", "grove", "timber", "birch", "oakwood"},
	BiomeDesert:   {"desert", "dune", "sand", "canyon", "arid", "wasteland"},
	BiomeTundra:   {"tundra", "snow", "ice", "frozen", "glacier", "permafrost"},
	BiomeJungle:   {"jungle", "vine", "tropic", "rainforest", "humid", "canopy"},
	BiomeCoast:    {"coast", "shore", "sea", "island", "harbor", "tide", "beach"},
	BiomeMountain: {"mountain", "peak", "crag", "cliff", "ridge", "highland"},
	BiomeWetland:  {"swamp", "marsh", "bog", "fen", "wetland", "mire"},
}

// TerrainKind is a (type, subtype) pair in a biome palette.
type TerrainKind struct {
	Type    string
	Subtype string
}

// BiomePalettes lists the terrain kinds a cell in each biome can take.
// The terrain picker hashes cell coordinates into this list, so the entry
// order is part of the determinism contract.
var BiomePalettes = map[Biome][]TerrainKind{
	BiomeUrban: {
		{"street", "cobbled"}, {"street", "muddy"}, {"plaza", "market"},
		{"ruin", "collapsed"}, {"yard", "walled"}, {"alley", "narrow"},
	},
	BiomeRural: {
		{"field", "wheat"}, {"field", "fallow"}, {"pasture", "fenced"},
		{"grass", "meadow"}, {"orchard", "apple"}, {"track", "rutted"},
	},
	BiomeForest: {
		{"forest", "pine"}, {"forest", "birch"}, {"forest", "undergrowth"},
		{"grass", "clearing"}, {"water", "stream"}, {"rock", "mossy"},
	},
	BiomeDesert: {
		{"sand", "dune"}, {"sand", "flat"}, {"rock", "mesa"},
		{"scrub", "thorn"}, {"gravel", "wash"}, {"salt", "pan"},
	},
	BiomeTundra: {
		{"snow", "drift"}, {"snow", "crusted"}, {"ice", "sheet"},
		{"rock", "frost-split"}, {"scrub", "lichen"}, {"grass", "sedge"},
	},
	BiomeJungle: {
		{"jungle", "canopy"}, {"jungle", "vine-choked"}, {"jungle", "fern"},
		{"water", "sluggish"}, {"mud", "root-bound"}, {"grass", "bamboo"},
	},
	BiomeCoast: {
		{"water", "surf"}, {"sand", "shell-strewn"}, {"sand", "dune"},
		{"grass", "salt-meadow"}, {"rock", "tidepool"}, {"scrub", "gorse"},
	},
	BiomeMountain: {
		{"rock", "scree"}, {"rock", "ledge"}, {"grass", "alpine"},
		{"snow", "high"}, {"scrub", "juniper"}, {"water", "tarn"},
	},
	BiomeWetland: {
		{"marsh", "reed"}, {"marsh", "open"}, {"water", "still"},
		{"mud", "sucking"}, {"grass", "tussock"}, {"scrub", "willow"},
	},
}

// BiomeTemplates are the description backfill templates per biome.
// Placeholders ${type}, ${subtype}, ${relief} are filled at backfill time;
// the narrator rewrites these, so they only need to carry the facts.
var BiomeTemplates = map[Biome][]string{
	BiomeUrban: {
		"A ${subtype} ${type} hemmed in by ${relief} rooflines.",
		"You stand in a ${subtype} ${type}; the ground here is ${relief}.",
	},
	BiomeRural: {
		"A ${subtype} ${type} stretches away over ${relief} ground.",
		"Open country: ${subtype} ${type}, the land ${relief}.",
	},
	BiomeForest: {
		"${subtype} ${type} closes in, the floor ${relief} underfoot.",
		"A ${subtype} ${type} with ${relief} ground between the trunks.",
	},
	BiomeDesert: {
		"${subtype} ${type} under a hard sky, the land ${relief}.",
		"A ${subtype} ${type}; heat shimmers over the ${relief} ground.",
	},
	BiomeTundra: {
		"${subtype} ${type}, wind-scoured and ${relief}.",
		"A ${subtype} ${type} runs toward a ${relief} horizon.",
	},
	BiomeJungle: {
		"${subtype} ${type} presses close; the earth is ${relief}.",
		"A ${subtype} ${type} drips overhead above ${relief} ground.",
	},
	BiomeCoast: {
		"${subtype} ${type} at the water's edge, the land ${relief}.",
		"A ${subtype} ${type}; salt wind crosses the ${relief} ground.",
	},
	BiomeMountain: {
		"${subtype} ${type} on the slope, the footing ${relief}.",
		"A ${subtype} ${type} high on ${relief} ground.",
	},
	BiomeWetland: {
		"${subtype} ${type}, the ground ${relief} and wet.",
		"A ${subtype} ${type}; every step through it is ${relief}.",
	},
}

// ReliefWords index into the noise field's bands, flattest first.
var ReliefWords = []string{"flat", "gently rolling", "uneven", "broken", "steep"}
