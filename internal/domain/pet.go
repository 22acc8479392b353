package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatMin = 0
	StatMax = 100
)

type PetStat string

const (
	StatHealth    PetStat = "HEALTH"
	StatHunger    PetStat = "HUNGER"
	StatHappiness PetStat = "HAPPINESS"
	StatEnergy    PetStat = "ENERGY"
)

type Pet struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Name      string          `db:"name" json:"name"`
	Health    int             `db:"health" json:"health"`
	Hunger    int             `db:"hunger" json:"hunger"`
	Happiness int             `db:"happiness" json:"happiness"`
	Energy    int             `db:"energy" json:"energy"`
	Equipped  []*EquippedItem `json:"equipped_items"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ClampStat bounds a pet stat to [StatMin, StatMax].
func ClampStat(v int) int {
	if v < StatMin {
		return StatMin
	}
	if v > StatMax {
		return StatMax
	}
	return v
}

// Apply adds delta to stat, clamped.
func (p *Pet) Apply(stat PetStat, delta int) {
	switch stat {
	case StatHealth:
		p.Health = ClampStat(p.Health + delta)
	case StatHunger:
		p.Hunger = ClampStat(p.Hunger + delta)
	case StatHappiness:
		p.Happiness = ClampStat(p.Happiness + delta)
	case StatEnergy:
		p.Energy = ClampStat(p.Energy + delta)
	}
}

type ItemType string

const (
	ItemFood          ItemType = "FOOD"
	ItemTreat         ItemType = "TREAT"
	ItemToy           ItemType = "TOY"
	ItemCustomization ItemType = "CUSTOMIZATION"
	ItemSpecial       ItemType = "SPECIAL"
)

type EquipmentSlot string

const (
	SlotHat        EquipmentSlot = "HAT"
	SlotGlasses    EquipmentSlot = "GLASSES"
	SlotShirt      EquipmentSlot = "SHIRT"
	SlotBackground EquipmentSlot = "BACKGROUND"
)

func (s EquipmentSlot) Valid() bool {
	switch s {
	case SlotHat, SlotGlasses, SlotShirt, SlotBackground:
		return true
	}
	return false
}

// PetItem is a catalog entry in the shop.
type PetItem struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Description   string         `db:"description" json:"description"`
	Type          ItemType       `db:"type" json:"type"`
	Cost          int64          `db:"cost" json:"cost"`
	IsPremium     bool           `db:"is_premium" json:"is_premium"`
	StatEffect    *PetStat       `db:"stat_effect" json:"stat_effect,omitempty"`
	EffectValue   *int           `db:"effect_value" json:"effect_value,omitempty"`
	EquipmentSlot *EquipmentSlot `db:"equipment_slot" json:"equipment_slot,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// Currency reports which balance pays for the item.
func (i *PetItem) Currency() Currency {
	if i.IsPremium {
		return CurrencyGems
	}
	return CurrencyGold
}

// InventoryItem is a stack of owned items. Quantity is always positive;
// a stack that reaches zero is removed.
type InventoryItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ItemID    uuid.UUID `db:"item_id" json:"item_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Item      *PetItem  `json:"item,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type EquippedItem struct {
	PetID  uuid.UUID     `db:"pet_id" json:"pet_id"`
	Slot   EquipmentSlot `db:"slot" json:"slot"`
	ItemID uuid.UUID     `db:"item_id" json:"item_id"`
	Item   *PetItem      `json:"item,omitempty"`
}
