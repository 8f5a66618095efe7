package quest

// Difficulty tiers in ascending order.
const (
	DiffTrivial  = "trivial"
	DiffEasy     = "easy"
	DiffModerate = "moderate"
	DiffHard     = "hard"
	DiffDeadly   = "deadly"
)

var difficulties = []string{DiffTrivial, DiffEasy, DiffModerate, DiffHard, DiffDeadly}

// Base difficulty weights before the settlement-size modifier.
var difficultyWeights = map[string]float64{
	DiffTrivial:  0.15,
	DiffEasy:     0.30,
	DiffModerate: 0.35,
	DiffHard:     0.15,
	DiffDeadly:   0.05,
}

// Settlement-size modifiers multiply the base weights. Small places never
// post deadly work; big cities skew dangerous.
var settlementModifiers = map[string]map[string]float64{
	"outpost":    {DiffTrivial: 1.5, DiffEasy: 1.3, DiffModerate: 0.8, DiffHard: 0.4, DiffDeadly: 0},
	"hamlet":     {DiffTrivial: 1.5, DiffEasy: 1.3, DiffModerate: 0.8, DiffHard: 0.4, DiffDeadly: 0},
	"village":    {DiffTrivial: 1.2, DiffEasy: 1.2, DiffModerate: 1.0, DiffHard: 0.7, DiffDeadly: 0.3},
	"town":       {DiffTrivial: 1.0, DiffEasy: 1.0, DiffModerate: 1.0, DiffHard: 1.0, DiffDeadly: 1.0},
	"city":       {DiffTrivial: 0.6, DiffEasy: 0.9, DiffModerate: 1.1, DiffHard: 1.3, DiffDeadly: 1.5},
	"metropolis": {DiffTrivial: 0.4, DiffEasy: 0.7, DiffModerate: 1.1, DiffHard: 1.5, DiffDeadly: 2.0},
}

// RewardRanges bounds reward_gold per difficulty, inclusive.
var RewardRanges = map[string][2]int{
	DiffTrivial:  {5, 25},
	DiffEasy:     {25, 75},
	DiffModerate: {75, 250},
	DiffHard:     {250, 750},
	DiffDeadly:   {750, 2000},
}

// AllowedEnemyTypes caps the bestiary per difficulty. Narratives naming
// anything outside their tier's list are rejected.
var AllowedEnemyTypes = map[string][]string{
	DiffTrivial:  {"rat", "stray dog", "petty thief"},
	DiffEasy:     {"bandit", "wolf", "goblin", "smuggler"},
	DiffModerate: {"mercenary", "ghoul", "cultist", "dire wolf", "brigand captain"},
	DiffHard:     {"troll", "wraith", "assassin", "warband chief"},
	DiffDeadly:   {"lich", "demon", "giant", "ancient horror"},
}

var enemyCountRanges = map[string][2]int{
	DiffTrivial:  {0, 1},
	DiffEasy:     {0, 2},
	DiffModerate: {1, 4},
	DiffHard:     {2, 6},
	DiffDeadly:   {3, 10},
}

var travelRanges = map[string][2]int{
	DiffTrivial:  {0, 1},
	DiffEasy:     {1, 3},
	DiffModerate: {2, 5},
	DiffHard:     {3, 8},
	DiffDeadly:   {5, 12},
}

// ForbiddenKeywords bars apex-tier menace words from low-tier narratives.
var ForbiddenKeywords = map[string][]string{
	DiffTrivial:  {"dragon", "god", "demon", "lich", "apocalypse"},
	DiffEasy:     {"dragon", "god", "demon", "lich"},
	DiffModerate: {"dragon", "god"},
	DiffHard:     {"god"},
	DiffDeadly:   {},
}

// rewardItemWeights: 0 items 70%, 1 item 25%, 2 items 5%.
var rewardItemWeights = []struct {
	Count  int
	Weight float64
}{
	{0, 0.70},
	{1, 0.25},
	{2, 0.05},
}

// Complexity shapes step count.
const (
	ComplexitySingle  = "single"
	ComplexityShort   = "short"
	ComplexityMedium  = "medium"
	ComplexityDynamic = "dynamic"
)

var complexityWeights = map[string]float64{
	ComplexitySingle:  0.30,
	ComplexityShort:   0.35,
	ComplexityMedium:  0.20,
	ComplexityDynamic: 0.15,
}

var complexitySteps = map[string][2]int{
	ComplexitySingle:  {1, 1},
	ComplexityShort:   {2, 3},
	ComplexityMedium:  {4, 6},
	ComplexityDynamic: {3, 5},
}

// Per-settlement quest availability probability ranges. Outposts share
// the hamlet band, metropolises the city band.
var availabilityRanges = map[string][2]float64{
	"outpost":    {0.10, 0.20},
	"hamlet":     {0.10, 0.20},
	"village":    {0.30, 0.40},
	"town":       {0.50, 0.70},
	"city":       {0.80, 1.00},
	"metropolis": {0.80, 1.00},
}

var failureTriggerKinds = []string{"observability", "innocence", "destruction", "moral_choice"}

// Consequence draw: permanent_failure 0.4, escalated_difficulty 0.3,
// redemption_available 0.3.
var consequenceWeights = []struct {
	Name   string
	Weight float64
}{
	{"permanent_failure", 0.4},
	{"escalated_difficulty", 0.3},
	{"redemption_available", 0.3},
}
