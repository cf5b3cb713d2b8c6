// Package ship models commissioned vessels and their swappable modules.
//
// A vessel's derived stats are never patched in place: every installation
// recomputes them from the base stats plus the bonuses of whatever occupies
// each slot, so installs commute and replacements cannot leak stale bonuses.
package ship

import (
	"errors"
	"fmt"
)

// Vessel slots. A slot holds at most one module; installing into an
// occupied slot replaces the previous module.
const (
	SlotPropulsion = "propulsion"
	SlotHull       = "hull"
	SlotUtility    = "utility"
)

// ErrUnknownSlot is returned when a module names a slot no vessel has.
var ErrUnknownSlot = errors.New("unknown vessel slot")

// Slots returns the vessel slots in their canonical order.
func Slots() []string {
	return []string{SlotPropulsion, SlotHull, SlotUtility}
}

// Stats is the speed/cargo/defense triple shared by base and derived stats.
type Stats struct {
	Speed   int
	Cargo   int
	Defense int
}

// Add returns the component-wise sum of two stat triples.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		Speed:   s.Speed + other.Speed,
		Cargo:   s.Cargo + other.Cargo,
		Defense: s.Defense + other.Defense,
	}
}

// Module is a swappable component contributing stat bonuses to one slot.
// Modules are immutable once generated.
type Module struct {
	Slot        string
	Name        string
	Speed       int
	Cargo       int
	Defense     int
	Description string
}

// Bonus returns the module's stat contribution.
func (m Module) Bonus() Stats {
	return Stats{Speed: m.Speed, Cargo: m.Cargo, Defense: m.Defense}
}

// InstallRecord is one line of a vessel's installation history.
type InstallRecord struct {
	Slot     string
	Module   string
	Replaced string
}

// Vessel is a commissioned starship. It lives in the world's vessel table
// from commissioning until process end; there is no removal operation.
type Vessel struct {
	ID       string
	Codename string
	CallSign string
	Class    string
	Role     string
	Summary  string
	Base     Stats
	Modules  map[string]Module
	Derived  Stats
	Region   string
	History  []InstallRecord
}

// New builds an empty-slotted vessel. Derived stats start equal to base
// stats until modules are installed.
func New(codename, callSign, class, role, summary string, base Stats) *Vessel {
	return &Vessel{
		Codename: codename,
		CallSign: callSign,
		Class:    class,
		Role:     role,
		Summary:  summary,
		Base:     base,
		Modules:  make(map[string]Module, len(Slots())),
		Derived:  base,
	}
}

// InstallModule places the module into its slot, replacing any occupant,
// then recomputes derived stats and appends to the installation history.
func (v *Vessel) InstallModule(m Module) (InstallRecord, error) {
	if !validSlot(m.Slot) {
		return InstallRecord{}, fmt.Errorf("install %q into slot %q: %w", m.Name, m.Slot, ErrUnknownSlot)
	}

	record := InstallRecord{Slot: m.Slot, Module: m.Name}
	if prior, ok := v.Modules[m.Slot]; ok {
		record.Replaced = prior.Name
	}
	v.Modules[m.Slot] = m
	v.recompute()
	v.History = append(v.History, record)
	return record, nil
}

// recompute rebuilds derived stats from base plus all installed bonuses.
func (v *Vessel) recompute() {
	derived := v.Base
	for _, slot := range Slots() {
		if m, ok := v.Modules[slot]; ok {
			derived = derived.Add(m.Bonus())
		}
	}
	v.Derived = derived
}

func validSlot(slot string) bool {
	for _, s := range Slots() {
		if s == slot {
			return true
		}
	}
	return false
}
