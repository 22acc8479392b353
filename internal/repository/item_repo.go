package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

const petItemColumns = `id, name, description, type, cost, is_premium, stat_effect, effect_value, equipment_slot, created_at`

// prefixed qualifies each column in a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func petItemDest(i *domain.PetItem) []any {
	return []any{&i.ID, &i.Name, &i.Description, &i.Type, &i.Cost, &i.IsPremium, &i.StatEffect, &i.EffectValue, &i.EquipmentSlot, &i.CreatedAt}
}

func scanPetItem(row rowScanner) (*domain.PetItem, error) {
	var i domain.PetItem
	if err := row.Scan(petItemDest(&i)...); err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *Tx) CreatePetItem(ctx context.Context, item *domain.PetItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO pet_items (`+petItemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.Name, item.Description, item.Type, item.Cost, item.IsPremium,
		item.StatEffect, item.EffectValue, item.EquipmentSlot, item.CreatedAt,
	)
	return translate(err, "item")
}

func (r *Tx) GetPetItem(ctx context.Context, id uuid.UUID) (*domain.PetItem, error) {
	item, err := scanPetItem(r.tx.QueryRow(ctx, `SELECT `+petItemColumns+` FROM pet_items WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "item")
	}
	return item, nil
}

func (r *Tx) ListPetItems(ctx context.Context) ([]*domain.PetItem, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+petItemColumns+` FROM pet_items ORDER BY cost, name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPetItem)
}

const inventorySelect = `SELECT v.id, v.user_id, v.item_id, v.quantity, v.created_at, ` +
	`i.id, i.name, i.description, i.type, i.cost, i.is_premium, i.stat_effect, i.effect_value, i.equipment_slot, i.created_at
	 FROM inventory_items v
	 JOIN pet_items i ON i.id = v.item_id`

func scanInventory(row rowScanner) (*domain.InventoryItem, error) {
	var v domain.InventoryItem
	item := &domain.PetItem{}
	if err := row.Scan(append([]any{&v.ID, &v.UserID, &v.ItemID, &v.Quantity, &v.CreatedAt}, petItemDest(item)...)...); err != nil {
		return nil, err
	}
	v.Item = item
	return &v, nil
}

func (r *Tx) GetInventoryItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	v, err := scanInventory(r.tx.QueryRow(ctx, inventorySelect+` WHERE v.id = $1 FOR UPDATE OF v`, id))
	if err != nil {
		return nil, translate(err, "inventory item")
	}
	return v, nil
}

func (r *Tx) FindInventoryItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.InventoryItem, error) {
	v, err := scanInventory(r.tx.QueryRow(ctx,
		inventorySelect+` WHERE v.user_id = $1 AND v.item_id = $2 FOR UPDATE OF v`, userID, itemID))
	if err != nil {
		return nil, translate(err, "inventory item")
	}
	return v, nil
}

func (r *Tx) ListInventory(ctx context.Context, userID uuid.UUID) ([]*domain.InventoryItem, error) {
	rows, err := r.tx.Query(ctx, inventorySelect+` WHERE v.user_id = $1 ORDER BY v.created_at`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanInventory)
}

func (r *Tx) CreateInventoryItem(ctx context.Context, v *domain.InventoryItem) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO inventory_items (id, user_id, item_id, quantity, created_at) VALUES ($1, $2, $3, $4, $5)`,
		v.ID, v.UserID, v.ItemID, v.Quantity, v.CreatedAt,
	)
	return translate(err, "inventory item")
}

func (r *Tx) SetInventoryQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return domain.BadRequest("quantity must be positive")
	}
	tag, err := r.tx.Exec(ctx, `UPDATE inventory_items SET quantity = $2 WHERE id = $1`, id, quantity)
	return expectOne(tag, err, "inventory item")
}

func (r *Tx) DeleteInventoryItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	return expectOne(tag, err, "inventory item")
}
