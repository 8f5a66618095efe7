package worldgen

import (
	"fmt"

	"driftworld/internal/catalog"
	"driftworld/internal/rng"
	"driftworld/internal/state"
)

// POIHazard is one hazard placement inside a point-of-interest interior.
type POIHazard struct {
	Kind string `json:"kind"` // water, collapse, gas
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// POIInterior is the transient L2 interior of a point of interest. It is
// fully determined by (seed, poiID) and regenerated on entry rather than
// persisted.
type POIInterior struct {
	ID      string      `json:"id"`
	Size    int         `json:"size"`
	Hazards []POIHazard `json:"hazards"`
}

// GeneratePOI builds a point-of-interest interior: a small square grid
// sprinkled with 0–2 hazards.
func GeneratePOI(seed uint32, poiID string) *POIInterior {
	s := rng.Keyed(seed, poiID, "poi")
	size := rng.IntFrom(s, 4, 8)
	poi := &POIInterior{ID: poiID, Size: size}

	for i, n := 0, rng.IntFrom(s, 0, 2); i < n; i++ {
		poi.Hazards = append(poi.Hazards, POIHazard{
			Kind: rng.Choice(s, catalog.POIHazards),
			X:    rng.IntFrom(s, 0, size-1),
			Y:    rng.IntFrom(s, 0, size-1),
		})
	}
	return poi
}

// Room name pools by slot; reused cyclically for large interiors.
var roomNames = []string{
	"main room", "back room", "side chamber", "upper room",
	"cellar", "hall", "gallery", "inner sanctum",
}

// GenerateRooms builds a building's L3 interior: a purpose-sized chain of
// rooms connected by bidirectional to_{room} exits, with the building's
// NPCs dealt round-robin across them. Idempotent per building.
func GenerateRooms(seed uint32, b *state.Building) {
	if len(b.Rooms) > 0 {
		return
	}
	rr, ok := catalog.RoomRanges[b.Purpose]
	if !ok {
		rr = catalog.RoomRanges[catalog.PurposeHouse]
	}
	s := rng.Keyed(seed, b.ID, "rooms")
	count := rng.IntFrom(s, rr[0], rr[1])

	rooms := make([]*state.Room, count)
	for i := 0; i < count; i++ {
		rooms[i] = &state.Room{
			ID:    fmt.Sprintf("%s_room_%d", b.ID, i),
			Name:  roomNames[i%len(roomNames)],
			Exits: make(map[string]string),
		}
	}
	for i := 0; i < count-1; i++ {
		rooms[i].Exits["to_"+rooms[i+1].ID] = rooms[i+1].ID
		rooms[i+1].Exits["to_"+rooms[i].ID] = rooms[i].ID
	}
	for i, id := range b.NPCIDs {
		r := rooms[i%count]
		r.NPCIDs = append(r.NPCIDs, id)
	}
	b.Rooms = rooms
}
