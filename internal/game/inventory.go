package game

// Slot is one inventory/window cell. An ItemID of -1 marks an empty slot,
// the same convention the wire protocol itself uses for SetSlotCB and
// WindowClickSB.
type Slot struct {
	ItemID int16
	Count  int8
	Damage int16
}

// emptySlot is the zero value every newly allocated Slot should hold,
// since Go's zero value for ItemID is 0 (a real item id), not -1.
var emptySlot = Slot{ItemID: -1}

// IsEmpty reports whether s holds no item.
func (s Slot) IsEmpty() bool { return s.ItemID < 0 || s.Count <= 0 }

// Inventory is a player's full persistent item storage: crafting grid and
// its output, armor, the 27-slot main inventory, and the 9-slot hotbar.
// Laid out as separate arrays rather than one flat slice so the game logic
// that only ever cares about "the held stack" or "armor slot 2" doesn't have
// to recompute a window offset itself.
type Inventory struct {
	CraftingOutput Slot
	Crafting       [4]Slot
	Armor          [4]Slot
	Main           [27]Slot
	Hotbar         [9]Slot
}

// NewInventory returns an Inventory with every slot empty.
func NewInventory() *Inventory {
	inv := &Inventory{}
	inv.CraftingOutput = emptySlot
	for i := range inv.Crafting {
		inv.Crafting[i] = emptySlot
	}
	for i := range inv.Armor {
		inv.Armor[i] = emptySlot
	}
	for i := range inv.Main {
		inv.Main[i] = emptySlot
	}
	for i := range inv.Hotbar {
		inv.Hotbar[i] = emptySlot
	}
	return inv
}

// WindowKind identifies what a Window represents, mainly so a future chest/
// furnace/workbench window can share the click-handling plumbing in
// handleWindowClick instead of each reimplementing it.
type WindowKind int8

const (
	// WindowKindInventory is the player's own inventory, window id 0, which
	// the client already has open on join and never needs a WindowOpenCB.
	WindowKindInventory WindowKind = iota
)

// SlotSection names one of Inventory's component arrays, for Translate and
// Untranslate to address without the caller needing to know the numeric
// window-slot layout.
type SlotSection int

const (
	SectionCraftingOutput SlotSection = iota
	SectionCrafting
	SectionArmor
	SectionMain
	SectionHotbar
)

// Window pairs a player's Inventory with the wire-level slot numbering a
// WindowClickSB/SetSlotCB packet uses, for the default inventory window:
// 0 = crafting output, 1-4 = crafting grid, 5-8 = armor, 9-35 = main
// inventory, 36-44 = hotbar. A chest/furnace window would prepend its own
// slots before this same player-inventory tail, which is why Translate
// takes the window-relative index rather than assuming it starts at 0.
type Window struct {
	Kind WindowKind
	ID   int8
	Inv  *Inventory
}

// NewInventoryWindow returns the default window (id 0) over inv.
func NewInventoryWindow(inv *Inventory) *Window {
	return &Window{Kind: WindowKindInventory, ID: 0, Inv: inv}
}

// Translate maps a wire slot index to the Inventory slot it addresses.
func (w *Window) Translate(windowSlot int16) (*Slot, bool) {
	switch {
	case windowSlot == 0:
		return &w.Inv.CraftingOutput, true
	case windowSlot >= 1 && windowSlot <= 4:
		return &w.Inv.Crafting[windowSlot-1], true
	case windowSlot >= 5 && windowSlot <= 8:
		return &w.Inv.Armor[windowSlot-5], true
	case windowSlot >= 9 && windowSlot <= 35:
		return &w.Inv.Main[windowSlot-9], true
	case windowSlot >= 36 && windowSlot <= 44:
		return &w.Inv.Hotbar[windowSlot-36], true
	default:
		return nil, false
	}
}

// Untranslate maps an Inventory section and local index back to the wire
// slot index Translate would resolve to the same Slot, the inverse used to
// build a SetSlotCB after game logic (not a client click) changes a slot —
// e.g. decrementing the held hotbar stack on block placement.
func (w *Window) Untranslate(section SlotSection, index int) (int16, bool) {
	switch section {
	case SectionCraftingOutput:
		return 0, true
	case SectionCrafting:
		if index < 0 || index > 3 {
			return 0, false
		}
		return int16(1 + index), true
	case SectionArmor:
		if index < 0 || index > 3 {
			return 0, false
		}
		return int16(5 + index), true
	case SectionMain:
		if index < 0 || index > 26 {
			return 0, false
		}
		return int16(9 + index), true
	case SectionHotbar:
		if index < 0 || index > 8 {
			return 0, false
		}
		return int16(36 + index), true
	default:
		return 0, false
	}
}

// HeldSlot returns the hotbar slot the player currently has selected.
func (p *Player) HeldSlot() *Slot {
	return &p.Inventory.Hotbar[p.HotbarSlot]
}
