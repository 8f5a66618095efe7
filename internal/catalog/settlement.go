package catalog

// SettlementKind classifies settlement scale. Also used as the site tier.
type SettlementKind string

const (
	KindOutpost    SettlementKind = "outpost"
	KindHamlet     SettlementKind = "hamlet"
	KindVillage    SettlementKind = "village"
	KindTown       SettlementKind = "town"
	KindCity       SettlementKind = "city"
	KindMetropolis SettlementKind = "metropolis"
)

// SettlementSpec holds the per-kind size tables.
type SettlementSpec struct {
	GridSize  int // Interior is GridSize×GridSize
	Buildings int
	NPCCount  int
	PopMin    int
	PopMax    int
}

// SettlementSpecs is the size table per settlement kind.
var SettlementSpecs = map[SettlementKind]SettlementSpec{
	KindOutpost:    {GridSize: 5, Buildings: 2, NPCCount: 3, PopMin: 20, PopMax: 60},
	KindHamlet:     {GridSize: 7, Buildings: 4, NPCCount: 8, PopMin: 60, PopMax: 200},
	KindVillage:    {GridSize: 9, Buildings: 7, NPCCount: 15, PopMin: 200, PopMax: 800},
	KindTown:       {GridSize: 12, Buildings: 12, NPCCount: 30, PopMin: 800, PopMax: 4000},
	KindCity:       {GridSize: 16, Buildings: 20, NPCCount: 60, PopMin: 4000, PopMax: 20000},
	KindMetropolis: {GridSize: 20, Buildings: 32, NPCCount: 120, PopMin: 20000, PopMax: 80000},
}

// DefaultNPCCount applies to any settlement kind outside the table.
const DefaultNPCCount = 10

// NPCCountFor returns the pool size for a settlement kind.
func NPCCountFor(kind SettlementKind) int {
	if spec, ok := SettlementSpecs[kind]; ok {
		return spec.NPCCount
	}
	return DefaultNPCCount
}

// SiteSpacing is the minimum Chebyshev distance between a cluster of the
// given tier and any other cluster center in the same L1 grid.
var SiteSpacing = map[SettlementKind]int{
	KindOutpost:    1,
	KindHamlet:     2,
	KindTown:       3,
	KindCity:       4,
	KindMetropolis: 6,
}

// SiteFootprint is the number of L1 cells a cluster of the given tier
// occupies.
var SiteFootprint = map[SettlementKind]int{
	KindOutpost:    1,
	KindHamlet:     1,
	KindTown:       1,
	KindCity:       3,
	KindMetropolis: 7,
}

// BuildingPurpose classifies interior buildings.
type BuildingPurpose string

const (
	PurposeHouse     BuildingPurpose = "house"
	PurposeShop      BuildingPurpose = "shop"
	PurposeTavern    BuildingPurpose = "tavern"
	PurposeTemple    BuildingPurpose = "temple"
	PurposeGuildhall BuildingPurpose = "guildhall"
	PurposePalace    BuildingPurpose = "palace"
)

// BuildingNamePools names buildings by purpose with a seeded pick.
var BuildingNamePools = map[BuildingPurpose][]string{
	PurposeHouse: {
		"a low timber house", "a whitewashed cottage", "a narrow row house",
		"a stone-footed longhouse", "a sagging daub house", "a tidy brick house",
	},
	PurposeShop: {
		"the Copper Scale", "Weaver's Row Goods", "the Split Barrel",
		"Hale & Daughters Provisioners", "the Tin Lantern", "Crossgate Sundries",
	},
	PurposeTavern: {
		"the Drowned Rat", "the Crooked Stile", "the Ash and Ember",
		"the Ferryman's Rest", "the Hollow Crown", "the Brindled Sow",
	},
	PurposeTemple: {
		"the Shrine of the Quiet Hand", "the Old Lantern Temple",
		"the Chapel of Nine Bells", "the Hearthstone Sanctum",
	},
	PurposeGuildhall: {
		"the Chandlers' Hall", "the Wrights' Assembly", "the Saltmen's Hall",
		"the Cartwheel Guildhouse",
	},
	PurposePalace: {
		"the Governor's Seat", "the High Keep", "the Summer Residence",
	},
}

// RoomRanges gives [min, max] interior rooms per building purpose.
var RoomRanges = map[BuildingPurpose][2]int{
	PurposeHouse:     {1, 2},
	PurposeShop:      {2, 3},
	PurposeTavern:    {3, 4},
	PurposeTemple:    {3, 5},
	PurposeGuildhall: {5, 7},
	PurposePalace:    {6, 8},
}

// Settlement name word lists. A name is one prefix joined to one suffix,
// both picked by a seeded hash.
var NamePrefixes = []string{
	"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
	"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
	"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
	"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
}

var NameSuffixes = []string{
	"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
	"stead", "wood", "field", "dale", "crest", "vale", "port",
	"town", "bury", "marsh", "well", "brook", "cliff", "moor",
	"ridge", "watch", "fall", "rest", "point", "reach", "helm",
}

// POIHazards are the hazards a point-of-interest interior can carry.
var POIHazards = []string{"water", "collapse", "gas"}

// Directions maps every accepted direction token to its canonical
// lowercase long form.
var Directions = map[string]string{
	"n": "north", "north": "north",
	"s": "south", "south": "south",
	"e": "east", "east": "east",
	"w": "west", "west": "west",
	"u": "up", "up": "up",
	"d": "down", "down": "down",
}
