package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habitquest/internal/service"
)

type rewardRequest struct {
	Title string  `json:"title"`
	Notes *string `json:"notes"`
	Cost  int64   `json:"cost"`
}

type rewardPatchRequest struct {
	Title *string `json:"title"`
	Notes *string `json:"notes"`
	Cost  *int64  `json:"cost"`
}

func (h *Handler) ListRewards(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	rewards, err := h.Rewards.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

func (h *Handler) CreateReward(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req rewardRequest
	if !bind(c, &req) {
		return
	}
	reward, err := h.Rewards.Create(c.Request.Context(), userID, service.RewardInput{
		Title: req.Title,
		Notes: req.Notes,
		Cost:  req.Cost,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reward)
}

func (h *Handler) UpdateReward(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req rewardPatchRequest
	if !bind(c, &req) {
		return
	}
	reward, err := h.Rewards.Update(c.Request.Context(), id, userID, service.RewardPatch{
		Title: req.Title,
		Notes: req.Notes,
		Cost:  req.Cost,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

func (h *Handler) DeleteReward(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	if err := h.Rewards.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RedeemReward(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	res, err := h.Rewards.Redeem(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
