package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habitquest/internal/service"
)

type challengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Goal        string `json:"goal"`
	IsPrivate   bool   `json:"is_private"`
}

type progressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

func (h *Handler) ListChallenges(c *gin.Context) {
	challenges, err := h.Challenges.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenges": challenges})
}

func (h *Handler) CreateChallenge(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req challengeRequest
	if !bind(c, &req) {
		return
	}
	ch, err := h.Challenges.Create(c.Request.Context(), userID, service.ChallengeInput{
		Title:       req.Title,
		Description: req.Description,
		Goal:        req.Goal,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

func (h *Handler) MyChallenges(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	parts, err := h.Challenges.Mine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participations": parts})
}

func (h *Handler) GetChallenge(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.Challenges.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) DeleteChallenge(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	if err := h.Challenges.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) JoinChallenge(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	p, err := h.Challenges.Join(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) StartChallenge(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	ch, err := h.Challenges.Start(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *Handler) ChallengeLeaderboard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	board, err := h.Challenges.Leaderboard(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": board})
}

func (h *Handler) DistributeChallengeRewards(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	payouts, err := h.Challenges.DistributeRewards(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

// Participation routes take the participation id as :id.

func (h *Handler) ApproveParticipation(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	p, err := h.Challenges.Approve(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) RejectParticipation(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	if err := h.Challenges.Reject(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateParticipationProgress(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req progressRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Challenges.UpdateProgress(c.Request.Context(), id, userID, *req.Progress)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CompleteParticipation(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	res, err := h.Challenges.Complete(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) LeaveChallenge(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	if err := h.Challenges.Leave(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
