package core

import (
	"fmt"
	"strings"
)

// Master identifies a slayer master. The zero value MasterNone means "no master".
type Master string

const (
	MasterNone     Master = ""
	MasterTurael   Master = "turael"
	MasterMazchna  Master = "mazchna"
	MasterVannaka  Master = "vannaka"
	MasterChaeldar Master = "chaeldar"
	MasterNieve    Master = "nieve"
	MasterDuradel  Master = "duradel"
	MasterKonar    Master = "konar"
)

// masterData is the static catalog entry for one master.
// points is indexed by Tier.
type masterData struct {
	display string
	npcs    []string
	points  [tierCount]int
}

var catalog = map[Master]masterData{
	MasterTurael:   {"Turael / Aya", []string{"Turael", "Aya", "Spria"}, [tierCount]int{0, 0, 0, 0, 0, 0}},
	MasterMazchna:  {"Mazchna", []string{"Mazchna", "Achtryn"}, [tierCount]int{6, 30, 90, 150, 210, 300}},
	MasterVannaka:  {"Vannaka", []string{"Vannaka"}, [tierCount]int{8, 40, 120, 200, 280, 400}},
	MasterChaeldar: {"Chaeldar", []string{"Chaeldar"}, [tierCount]int{10, 50, 150, 250, 350, 500}},
	MasterNieve:    {"Nieve / Steve", []string{"Nieve", "Steve"}, [tierCount]int{12, 60, 180, 300, 420, 600}},
	MasterDuradel:  {"Duradel / Kuradel", []string{"Duradel", "Kuradal"}, [tierCount]int{15, 75, 225, 375, 525, 750}},
	MasterKonar:    {"Konar quo Maten", []string{"Konar quo Maten"}, [tierCount]int{18, 90, 270, 450, 630, 900}},
}

// AllMasters returns every master in catalog order (lowest to highest requirement).
func AllMasters() []Master {
	return []Master{MasterTurael, MasterMazchna, MasterVannaka, MasterChaeldar, MasterNieve, MasterDuradel, MasterKonar}
}

// Valid reports whether m is a catalog master.
func (m Master) Valid() bool {
	_, ok := catalog[m]
	return ok
}

// DisplayName returns the human-readable name, e.g. "Nieve / Steve".
func (m Master) DisplayName() string {
	if d, ok := catalog[m]; ok {
		return d.display
	}
	if m == MasterNone {
		return "None"
	}
	return string(m)
}

// NPCNames returns a copy of the in-game NPC names that denote this master.
func (m Master) NPCNames() []string {
	d, ok := catalog[m]
	if !ok {
		return nil
	}
	return append([]string(nil), d.npcs...)
}

// Points returns the catalog value for the given tier, before any diary bonus.
func (m Master) Points(t Tier) int {
	d, ok := catalog[m]
	if !ok || t < TierBase || t >= tierCount {
		return 0
	}
	return d.points[t]
}

func (m Master) String() string { return m.DisplayName() }

// MarshalText encodes the master as its id.
func (m Master) MarshalText() ([]byte, error) { return []byte(m), nil }

// UnmarshalText accepts an id or display name, case-insensitively.
func (m *Master) UnmarshalText(b []byte) error {
	parsed, err := ParseMaster(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMaster resolves an id ("konar") or display name ("Konar quo Maten").
// An empty string parses to MasterNone.
func ParseMaster(s string) (Master, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MasterNone, nil
	}
	for _, m := range AllMasters() {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, catalog[m].display) {
			return m, nil
		}
	}
	return MasterNone, fmt.Errorf("%w: %q", ErrUnknownMaster, s)
}

// MasterFromNPCName finds the master an NPC name belongs to (case-insensitive exact match).
func MasterFromNPCName(name string) (Master, bool) {
	if name == "" {
		return MasterNone, false
	}
	for _, m := range AllMasters() {
		for _, n := range catalog[m].npcs {
			if strings.EqualFold(n, name) {
				return m, true
			}
		}
	}
	return MasterNone, false
}

// IsSlayerMaster reports whether the NPC name belongs to any master.
func IsSlayerMaster(name string) bool {
	_, ok := MasterFromNPCName(name)
	return ok
}
