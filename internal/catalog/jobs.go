package catalog

// Job is one occupation an NPC can hold. CriminalWeight is the chance the
// holder works outside the law: 0 never, 1 always, anything between is
// rolled at generation time. MinAge gates the job by NPC age.
type Job struct {
	Name           string
	Tier           int // Social tier 1 (elite) .. 4 (underclass)
	CriminalWeight float64
	MinAge         int
}

// Unemployed is the placeholder job used when an NPC's age disqualifies
// every job in its tier.
var Unemployed = Job{Name: "unemployed", Tier: 0, CriminalWeight: 0, MinAge: 0}

// Tier sizes are fixed: 11 elite, 22 professional, 27 common, 12 underclass.
func buildJobs() []Job {
	j := func(name string, tier int, cw float64, minAge int) Job {
		return Job{Name: name, Tier: tier, CriminalWeight: cw, MinAge: minAge}
	}
	return []Job{
		// Tier 1: elite (11).
		j("noble", 1, 0.05, 18),
		j("magistrate", 1, 0.05, 30),
		j("high priest", 1, 0.00, 35),
		j("guildmaster", 1, 0.10, 30),
		j("banker", 1, 0.15, 25),
		j("courtier", 1, 0.20, 18),
		j("ambassador", 1, 0.05, 30),
		j("archmage", 1, 0.00, 40),
		j("admiral", 1, 0.00, 35),
		j("steward", 1, 0.05, 25),
		j("spymaster", 1, 0.85, 30),

		// Tier 2: professional (22).
		j("merchant", 2, 0.15, 18),
		j("ship captain", 2, 0.10, 25),
		j("priest", 2, 0.00, 22),
		j("scholar", 2, 0.00, 20),
		j("physician", 2, 0.02, 25),
		j("alchemist", 2, 0.10, 22),
		j("jeweler", 2, 0.08, 20),
		j("moneylender", 2, 0.30, 25),
		j("master smith", 2, 0.02, 25),
		j("architect", 2, 0.00, 25),
		j("guard captain", 2, 0.05, 28),
		j("vintner", 2, 0.05, 22),
		j("silk trader", 2, 0.12, 20),
		j("cartographer", 2, 0.00, 20),
		j("barrister", 2, 0.10, 25),
		j("playwright", 2, 0.05, 18),
		j("master mason", 2, 0.02, 25),
		j("horse breeder", 2, 0.05, 20),
		j("apothecary", 2, 0.08, 22),
		j("engraver", 2, 0.10, 20),
		j("fencing master", 2, 0.05, 22),
		j("customs officer", 2, 0.25, 25),

		// Tier 3: common (27).
		j("farmer", 3, 0.02, 14),
		j("blacksmith", 3, 0.02, 16),
		j("carpenter", 3, 0.02, 14),
		j("baker", 3, 0.02, 14),
		j("fisher", 3, 0.02, 12),
		j("innkeeper", 3, 0.08, 20),
		j("tailor", 3, 0.02, 14),
		j("tanner", 3, 0.03, 14),
		j("cooper", 3, 0.02, 16),
		j("weaver", 3, 0.02, 12),
		j("miller", 3, 0.04, 16),
		j("butcher", 3, 0.03, 16),
		j("brewer", 3, 0.05, 18),
		j("potter", 3, 0.02, 14),
		j("shepherd", 3, 0.02, 10),
		j("hunter", 3, 0.06, 14),
		j("miner", 3, 0.04, 14),
		j("sailor", 3, 0.10, 14),
		j("stablehand", 3, 0.03, 12),
		j("guard", 3, 0.05, 18),
		j("scribe", 3, 0.02, 16),
		j("chandler", 3, 0.02, 14),
		j("mason", 3, 0.02, 16),
		j("fletcher", 3, 0.03, 14),
		j("cook", 3, 0.02, 14),
		j("barber", 3, 0.03, 16),
		j("ferryman", 3, 0.05, 14),

		// Tier 4: underclass (12).
		j("beggar", 4, 0.20, 5),
		j("pickpocket", 4, 1.00, 8),
		j("smuggler", 4, 1.00, 16),
		j("rat catcher", 4, 0.05, 10),
		j("gravedigger", 4, 0.05, 16),
		j("urchin", 4, 0.30, 5),
		j("fence", 4, 1.00, 18),
		j("vagrant", 4, 0.15, 5),
		j("cutpurse", 4, 1.00, 10),
		j("night soil collector", 4, 0.00, 12),
		j("mudlark", 4, 0.10, 6),
		j("poacher", 4, 0.90, 12),
	}
}

// tierSizes is the required per-tier partition, validated at load.
var tierSizes = map[int]int{1: 11, 2: 22, 3: 27, 4: 12}
