package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"habitquest/internal/domain"
)

type renameRequest struct {
	Name string `json:"name"`
}

type buyRequest struct {
	Quantity int `json:"quantity" binding:"omitempty,min=1,max=999"`
}

type inventoryRequest struct {
	InventoryID string `json:"inventory_id" binding:"required"`
}

func (h *Handler) GetPet(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	pet, err := h.Pets.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pet)
}

func (h *Handler) RenamePet(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req renameRequest
	if !bind(c, &req) {
		return
	}
	pet, err := h.Pets.Rename(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pet)
}

func (h *Handler) Inventory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	items, err := h.Pets.Inventory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": items})
}

func (h *Handler) Shop(c *gin.Context) {
	items, err := h.Pets.ShopItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) BuyItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req buyRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	res, err := h.Pets.Buy(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UseItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req inventoryRequest
	if !bind(c, &req) {
		return
	}
	invID, err := parseUUID("inventory_id", req.InventoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.Pets.Use(c.Request.Context(), userID, invID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) EquipItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req inventoryRequest
	if !bind(c, &req) {
		return
	}
	invID, err := parseUUID("inventory_id", req.InventoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	pet, err := h.Pets.Equip(c.Request.Context(), userID, invID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pet)
}

func (h *Handler) UnequipSlot(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	slot := domain.EquipmentSlot(strings.ToUpper(c.Param("slot")))
	pet, err := h.Pets.Unequip(c.Request.Context(), userID, slot)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pet)
}
