package worldgen

import (
	"fmt"
	"time"

	"driftworld/internal/state"
)

// Layer transitions. Settlements persist in world.settlements and are
// reused by id; POI interiors are transient and regenerated on entry.

// EnterL2FromL1 descends into the settlement or point of interest at the
// player's current L1 cell. created reports a settlement generated for
// the first time (the caller seeds its quests).
func (g *Generator) EnterL2FromL1(gs *state.GameState, now time.Time, rec *state.Recorder) (settlement *state.Settlement, created bool, err error) {
	if gs.World.CurrentLayer != 1 {
		return nil, false, fmt.Errorf("enter L2: current layer is %d", gs.World.CurrentLayer)
	}

	site := SiteAt(gs)
	if site == nil {
		cell := CurrentCell(gs)
		if cell == nil || !hasTag(cell.Tags, "poi") {
			return nil, false, fmt.Errorf("nothing to enter here")
		}
		gs.World.L2Active = "poi:" + cell.ID
		gs.World.L2Pos = &state.CellRef{}
		gs.World.CurrentLayer = 2
		rec.Set("/world/current_layer", 2)
		rec.Set("/world/l2_active", gs.World.L2Active)
		return nil, false, nil
	}

	settlement, ok := gs.World.Settlements[site.ID]
	if !ok {
		settlement = g.GenerateSettlement(gs, site, now)
		gs.World.Settlements[site.ID] = settlement
		rec.Add("/world/settlements/"+site.ID, settlement)
		created = true
	}
	if !site.Promoted {
		site.Promoted = true
		gs.Counters.SiteRev++
		rec.Set("/world/sites/"+site.ID+"/promoted", true)
	}

	gs.World.L2Active = site.ID
	gs.World.L2Pos = &state.CellRef{LX: settlement.Width / 2, LY: settlement.Height / 2}
	gs.World.CurrentLayer = 2
	rec.Set("/world/current_layer", 2)
	rec.Set("/world/l2_active", site.ID)
	return settlement, created, nil
}

// ExitL2 ascends back to the L1 grid.
func (g *Generator) ExitL2(gs *state.GameState, rec *state.Recorder) error {
	if gs.World.CurrentLayer != 2 {
		return fmt.Errorf("exit L2: current layer is %d", gs.World.CurrentLayer)
	}
	gs.World.L2Active = ""
	gs.World.L2Pos = nil
	gs.World.CurrentLayer = 1
	rec.Set("/world/current_layer", 1)
	rec.Set("/world/l2_active", "")
	return nil
}

// EnterL3FromL2 descends into a building of the active settlement,
// generating its rooms on first entry.
func (g *Generator) EnterL3FromL2(gs *state.GameState, buildingID string, rec *state.Recorder) (*state.Building, error) {
	if gs.World.CurrentLayer != 2 {
		return nil, fmt.Errorf("enter L3: current layer is %d", gs.World.CurrentLayer)
	}
	settlement := gs.World.Settlements[gs.World.L2Active]
	if settlement == nil {
		return nil, fmt.Errorf("enter L3: no active settlement")
	}
	var building *state.Building
	for _, b := range settlement.Buildings {
		if b.ID == buildingID {
			building = b
			break
		}
	}
	if building == nil {
		return nil, fmt.Errorf("enter L3: unknown building %s", buildingID)
	}

	GenerateRooms(gs.RNGSeed, building)
	gs.World.L3Active = buildingID
	gs.World.CurrentLayer = 3
	rec.Set("/world/current_layer", 3)
	rec.Set("/world/l3_active", buildingID)
	return building, nil
}

// ExitL3 ascends back to the settlement interior.
func (g *Generator) ExitL3(gs *state.GameState, rec *state.Recorder) error {
	if gs.World.CurrentLayer != 3 {
		return fmt.Errorf("exit L3: current layer is %d", gs.World.CurrentLayer)
	}
	gs.World.L3Active = ""
	gs.World.CurrentLayer = 2
	rec.Set("/world/current_layer", 2)
	rec.Set("/world/l3_active", "")
	return nil
}
