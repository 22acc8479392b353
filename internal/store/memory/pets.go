package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

func (t *tx) CreatePet(ctx context.Context, p *domain.Pet) error {
	for _, existing := range t.st.pets {
		if existing.UserID == p.UserID {
			return domain.Conflict("user already has a pet")
		}
	}
	t.st.track(&p.ID)
	stored := *p
	stored.Equipped = nil
	t.st.pets[p.ID] = stored
	return nil
}

func (t *tx) GetPetByUser(ctx context.Context, userID uuid.UUID) (*domain.Pet, error) {
	for _, p := range t.st.pets {
		if p.UserID != userID {
			continue
		}
		p.Equipped = []*domain.EquippedItem{}
		for key, e := range t.st.equipped {
			if key.petID != p.ID {
				continue
			}
			if item, ok := t.st.items[e.ItemID]; ok {
				e.Item = &item
			}
			p.Equipped = append(p.Equipped, &e)
		}
		sort.Slice(p.Equipped, func(i, j int) bool { return p.Equipped[i].Slot < p.Equipped[j].Slot })
		return &p, nil
	}
	return nil, domain.NotFound("pet not found")
}

func (t *tx) UpdatePet(ctx context.Context, p *domain.Pet) error {
	if _, ok := t.st.pets[p.ID]; !ok {
		return domain.NotFound("pet not found")
	}
	stored := *p
	stored.Equipped = nil
	t.st.pets[p.ID] = stored
	return nil
}

func (t *tx) Equip(ctx context.Context, petID uuid.UUID, slot domain.EquipmentSlot, itemID uuid.UUID) error {
	t.st.equipped[equipKey{petID, slot}] = domain.EquippedItem{PetID: petID, Slot: slot, ItemID: itemID}
	return nil
}

func (t *tx) Unequip(ctx context.Context, petID uuid.UUID, slot domain.EquipmentSlot) error {
	key := equipKey{petID, slot}
	if _, ok := t.st.equipped[key]; !ok {
		return domain.NotFound("nothing equipped in slot %s", slot)
	}
	delete(t.st.equipped, key)
	return nil
}

func (t *tx) CreatePetItem(ctx context.Context, item *domain.PetItem) error {
	for _, existing := range t.st.items {
		if existing.Name == item.Name {
			return domain.Conflict("item %q already exists", item.Name)
		}
	}
	t.st.track(&item.ID)
	t.st.items[item.ID] = *item
	return nil
}

func (t *tx) GetPetItem(ctx context.Context, id uuid.UUID) (*domain.PetItem, error) {
	item, ok := t.st.items[id]
	if !ok {
		return nil, domain.NotFound("item not found")
	}
	return &item, nil
}

func (t *tx) ListPetItems(ctx context.Context) ([]*domain.PetItem, error) {
	out := make([]*domain.PetItem, 0, len(t.st.items))
	for _, item := range t.st.items {
		out = append(out, &item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (t *tx) withItem(inv domain.InventoryItem) *domain.InventoryItem {
	if item, ok := t.st.items[inv.ItemID]; ok {
		inv.Item = &item
	}
	return &inv
}

func (t *tx) GetInventoryItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	inv, ok := t.st.inventory[id]
	if !ok {
		return nil, domain.NotFound("inventory item not found")
	}
	return t.withItem(inv), nil
}

func (t *tx) FindInventoryItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.InventoryItem, error) {
	for _, inv := range t.st.inventory {
		if inv.UserID == userID && inv.ItemID == itemID {
			return t.withItem(inv), nil
		}
	}
	return nil, domain.NotFound("inventory item not found")
}

func (t *tx) ListInventory(ctx context.Context, userID uuid.UUID) ([]*domain.InventoryItem, error) {
	var out []*domain.InventoryItem
	for _, inv := range t.st.inventory {
		if inv.UserID == userID {
			out = append(out, t.withItem(inv))
		}
	}
	sortOldestFirst(t.st, out, func(i *domain.InventoryItem) (time.Time, uuid.UUID) { return i.CreatedAt, i.ID })
	return out, nil
}

func (t *tx) CreateInventoryItem(ctx context.Context, inv *domain.InventoryItem) error {
	if inv.Quantity <= 0 {
		return domain.BadRequest("quantity must be positive")
	}
	t.st.track(&inv.ID)
	stored := *inv
	stored.Item = nil
	t.st.inventory[inv.ID] = stored
	return nil
}

func (t *tx) SetInventoryQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	inv, ok := t.st.inventory[id]
	if !ok {
		return domain.NotFound("inventory item not found")
	}
	if quantity <= 0 {
		return domain.BadRequest("quantity must be positive")
	}
	inv.Quantity = quantity
	t.st.inventory[id] = inv
	return nil
}

func (t *tx) DeleteInventoryItem(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.st.inventory[id]; !ok {
		return domain.NotFound("inventory item not found")
	}
	delete(t.st.inventory, id)
	return nil
}
