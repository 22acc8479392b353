package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/caching"
	"habitquest/internal/domain"
	"habitquest/internal/logger"
	"habitquest/internal/store"
)

const shopCacheKey = "shop:items"

// PetService covers the pet, its inventory and the item shop.
type PetService struct {
	*Deps
	cache    caching.Cache
	cacheTTL time.Duration
}

// NewPetService builds the service. With a nil cache the shop is read from
// the store on every call.
func NewPetService(d *Deps, c caching.Cache, ttl time.Duration) *PetService {
	return &PetService{Deps: d, cache: c, cacheTTL: ttl}
}

func (s *PetService) Get(ctx context.Context, userID uuid.UUID) (*domain.Pet, error) {
	var pet *domain.Pet
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		pet, err = tx.GetPetByUser(ctx, userID)
		return err
	})
	return pet, err
}

func (s *PetService) Rename(ctx context.Context, userID uuid.UUID, name string) (*domain.Pet, error) {
	name, err := requireText("name", name)
	if err != nil {
		return nil, err
	}
	var pet *domain.Pet
	err = s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if pet, err = tx.GetPetByUser(ctx, userID); err != nil {
			return err
		}
		pet.Name = name
		pet.UpdatedAt = s.Clock.Now()
		return tx.UpdatePet(ctx, pet)
	})
	return pet, err
}

func (s *PetService) Inventory(ctx context.Context, userID uuid.UUID) ([]*domain.InventoryItem, error) {
	var out []*domain.InventoryItem
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListInventory(ctx, userID)
		return err
	})
	return out, err
}

func (s *PetService) loadShop(ctx context.Context) ([]*domain.PetItem, error) {
	var items []*domain.PetItem
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		items, err = tx.ListPetItems(ctx)
		return err
	})
	return items, err
}

// ShopItems returns the catalog ordered by cost.
func (s *PetService) ShopItems(ctx context.Context) ([]*domain.PetItem, error) {
	if s.cache == nil {
		return s.loadShop(ctx)
	}
	return caching.UseCache(ctx, s.cache, shopCacheKey, s.cacheTTL, func() ([]*domain.PetItem, error) {
		return s.loadShop(ctx)
	})
}

// InvalidateShop drops the cached catalog.
func (s *PetService) InvalidateShop(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, shopCacheKey); err != nil {
		logger.Warn("shop cache invalidation failed", "error", err)
	}
}

type PurchaseResult struct {
	Inventory *domain.InventoryItem `json:"inventory"`
	Gold      int64                 `json:"gold"`
	Gems      int64                 `json:"gems"`
}

// MaxPurchaseQuantity caps a single shop purchase.
const MaxPurchaseQuantity = 999

// Buy purchases quantity units of an item, paying in gems for premium
// items and gold otherwise.
func (s *PetService) Buy(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*PurchaseResult, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, domain.BadRequest("quantity must be positive")
	}
	if quantity > MaxPurchaseQuantity {
		return nil, domain.BadRequest("quantity must be at most %d", MaxPurchaseQuantity)
	}
	var res *PurchaseResult
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		item, err := tx.GetPetItem(ctx, itemID)
		if err != nil {
			return err
		}

		if item.Cost > 0 && int64(quantity) > math.MaxInt64/item.Cost {
			return domain.BadRequest("quantity too large for this item")
		}

		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if total := item.Cost * int64(quantity); total > 0 {
			user, err = s.Balance.Debit(ctx, tx, userID, item.Currency(), total, domain.TxShopPurchase, map[string]interface{}{
				"item_id":  itemID.String(),
				"name":     item.Name,
				"quantity": quantity,
			})
			if err != nil {
				return err
			}
		}

		inv, err := tx.FindInventoryItem(ctx, userID, itemID)
		switch {
		case err == nil:
			inv.Quantity += quantity
			if err := tx.SetInventoryQuantity(ctx, inv.ID, inv.Quantity); err != nil {
				return err
			}
		case domain.IsKind(err, domain.KindNotFound):
			inv = &domain.InventoryItem{
				UserID:    userID,
				ItemID:    itemID,
				Quantity:  quantity,
				CreatedAt: s.Clock.Now(),
			}
			if err := tx.CreateInventoryItem(ctx, inv); err != nil {
				return err
			}
		default:
			return err
		}
		inv.Item = item

		res = &PurchaseResult{Inventory: inv, Gold: user.Gold, Gems: user.Gems}
		return nil
	})
	return res, err
}

// ownedItem loads an inventory stack owned by userID.
func (s *PetService) ownedItem(ctx context.Context, tx store.Tx, userID, inventoryID uuid.UUID) (*domain.InventoryItem, error) {
	inv, err := tx.GetInventoryItem(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if inv.UserID != userID {
		return nil, domain.Forbidden("item belongs to another user")
	}
	if inv.Item == nil {
		if inv.Item, err = tx.GetPetItem(ctx, inv.ItemID); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

type UseItemResult struct {
	Pet       *domain.Pet `json:"pet"`
	Remaining int         `json:"remaining"`
}

// Use consumes one unit of an inventory stack on the pet. Customization
// items are equipped instead.
func (s *PetService) Use(ctx context.Context, userID, inventoryID uuid.UUID) (*UseItemResult, error) {
	var res *UseItemResult
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		inv, err := s.ownedItem(ctx, tx, userID, inventoryID)
		if err != nil {
			return err
		}
		if inv.Item.Type == domain.ItemCustomization {
			return domain.BadRequest("customization items must be equipped, not used")
		}

		pet, err := tx.GetPetByUser(ctx, userID)
		if err != nil {
			return err
		}
		if inv.Item.StatEffect != nil && inv.Item.EffectValue != nil {
			pet.Apply(*inv.Item.StatEffect, *inv.Item.EffectValue)
			pet.UpdatedAt = s.Clock.Now()
			if err := tx.UpdatePet(ctx, pet); err != nil {
				return err
			}
		}

		remaining := inv.Quantity - 1
		if remaining > 0 {
			err = tx.SetInventoryQuantity(ctx, inv.ID, remaining)
		} else {
			err = tx.DeleteInventoryItem(ctx, inv.ID)
		}
		if err != nil {
			return err
		}
		res = &UseItemResult{Pet: pet, Remaining: remaining}
		return nil
	})
	return res, err
}

// Equip puts an owned customization item into its slot, replacing whatever
// the pet wore there.
func (s *PetService) Equip(ctx context.Context, userID, inventoryID uuid.UUID) (*domain.Pet, error) {
	var pet *domain.Pet
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		inv, err := s.ownedItem(ctx, tx, userID, inventoryID)
		if err != nil {
			return err
		}
		if inv.Item.Type != domain.ItemCustomization || inv.Item.EquipmentSlot == nil {
			return domain.BadRequest("only customization items can be equipped")
		}

		if pet, err = tx.GetPetByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Equip(ctx, pet.ID, *inv.Item.EquipmentSlot, inv.ItemID); err != nil {
			return err
		}
		pet, err = tx.GetPetByUser(ctx, userID)
		return err
	})
	return pet, err
}

func (s *PetService) Unequip(ctx context.Context, userID uuid.UUID, slot domain.EquipmentSlot) (*domain.Pet, error) {
	if !slot.Valid() {
		return nil, domain.BadRequest("unknown equipment slot %q", slot)
	}
	var pet *domain.Pet
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if pet, err = tx.GetPetByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Unequip(ctx, pet.ID, slot); err != nil {
			return err
		}
		pet, err = tx.GetPetByUser(ctx, userID)
		return err
	})
	return pet, err
}
