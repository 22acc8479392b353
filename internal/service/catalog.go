package service

import (
	"context"
	"strings"

	"habitquest/internal/clock"
	"habitquest/internal/domain"
	"habitquest/internal/logger"
	"habitquest/internal/store"
)

func stat(s domain.PetStat) *domain.PetStat             { return &s }
func slot(s domain.EquipmentSlot) *domain.EquipmentSlot { return &s }
func intp(v int) *int                                   { return &v }

// DefaultShopItems is the starter catalog.
func DefaultShopItems() []domain.PetItem {
	return []domain.PetItem{
		{Name: "Apple", Description: "A crunchy snack.", Type: domain.ItemFood, Cost: 5, StatEffect: stat(domain.StatHunger), EffectValue: intp(10)},
		{Name: "Steak", Description: "A hearty meal.", Type: domain.ItemFood, Cost: 15, StatEffect: stat(domain.StatHunger), EffectValue: intp(30)},
		{Name: "Candy", Description: "Sweet and cheerful.", Type: domain.ItemTreat, Cost: 10, StatEffect: stat(domain.StatHappiness), EffectValue: intp(20)},
		{Name: "Energy Drink", Description: "Back on its feet.", Type: domain.ItemSpecial, Cost: 3, IsPremium: true, StatEffect: stat(domain.StatEnergy), EffectValue: intp(50)},
		{Name: "Top Hat", Description: "Very distinguished.", Type: domain.ItemCustomization, Cost: 100, EquipmentSlot: slot(domain.SlotHat)},
		{Name: "Sunglasses", Description: "Too cool.", Type: domain.ItemCustomization, Cost: 75, EquipmentSlot: slot(domain.SlotGlasses)},
	}
}

// SeedShop adds the catalog items whose names are missing and returns how
// many it added. Running it twice adds nothing.
func SeedShop(ctx context.Context, st store.Store, clk clock.Clock, items []domain.PetItem) (int, error) {
	added := 0
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		added = 0
		existing, err := tx.ListPetItems(ctx)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, it := range existing {
			have[strings.ToLower(it.Name)] = true
		}
		for _, it := range items {
			if have[strings.ToLower(it.Name)] {
				continue
			}
			it.CreatedAt = clk.Now()
			if err := tx.CreatePetItem(ctx, &it); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err == nil && added > 0 {
		logger.Info("shop seeded", "added", added)
	}
	return added, err
}
