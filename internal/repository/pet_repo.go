package repository

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

const petColumns = `id, user_id, name, health, hunger, happiness, energy, created_at, updated_at`

func (r *Tx) CreatePet(ctx context.Context, p *domain.Pet) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO pets (`+petColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.UserID, p.Name, p.Health, p.Hunger, p.Happiness, p.Energy, p.CreatedAt, p.UpdatedAt,
	)
	return translate(err, "pet")
}

func (r *Tx) GetPetByUser(ctx context.Context, userID uuid.UUID) (*domain.Pet, error) {
	var p domain.Pet
	err := r.tx.QueryRow(ctx,
		`SELECT `+petColumns+` FROM pets WHERE user_id = $1 FOR UPDATE`, userID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Health, &p.Hunger, &p.Happiness, &p.Energy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err, "pet")
	}

	rows, err := r.tx.Query(ctx,
		`SELECT e.pet_id, e.slot, `+prefixed("i", petItemColumns)+`
		 FROM equipped_items e
		 JOIN pet_items i ON i.id = e.item_id
		 WHERE e.pet_id = $1
		 ORDER BY e.slot`, p.ID)
	if err != nil {
		return nil, err
	}
	p.Equipped, err = collect(rows, func(row rowScanner) (*domain.EquippedItem, error) {
		var e domain.EquippedItem
		item := &domain.PetItem{}
		if err := row.Scan(append([]any{&e.PetID, &e.Slot}, petItemDest(item)...)...); err != nil {
			return nil, err
		}
		e.ItemID = item.ID
		e.Item = item
		return &e, nil
	})
	if err != nil {
		return nil, err
	}
	if p.Equipped == nil {
		p.Equipped = []*domain.EquippedItem{}
	}
	return &p, nil
}

func (r *Tx) UpdatePet(ctx context.Context, p *domain.Pet) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE pets SET name = $2, health = $3, hunger = $4, happiness = $5, energy = $6, updated_at = $7
		 WHERE id = $1`,
		p.ID, p.Name, p.Health, p.Hunger, p.Happiness, p.Energy, p.UpdatedAt,
	)
	return expectOne(tag, err, "pet")
}

func (r *Tx) Equip(ctx context.Context, petID uuid.UUID, slot domain.EquipmentSlot, itemID uuid.UUID) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO equipped_items (pet_id, slot, item_id) VALUES ($1, $2, $3)
		 ON CONFLICT (pet_id, slot) DO UPDATE SET item_id = EXCLUDED.item_id`,
		petID, slot, itemID,
	)
	return translate(err, "equipped item")
}

func (r *Tx) Unequip(ctx context.Context, petID uuid.UUID, slot domain.EquipmentSlot) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM equipped_items WHERE pet_id = $1 AND slot = $2`, petID, slot)
	return expectOne(tag, err, "equipped item")
}
