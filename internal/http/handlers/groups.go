package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/service"
)

type groupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

type groupPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

type roleRequest struct {
	UserID string           `json:"user_id" binding:"required"`
	Role   domain.GroupRole `json:"role" binding:"required"`
}

type messageRequest struct {
	Content string `json:"content"`
}

// groupAndTarget reads the caller, :id and :userId.
func groupAndTarget(c *gin.Context) (groupID, actorID, target uuid.UUID, ok bool) {
	if groupID, actorID, ok = ownedID(c); !ok {
		return
	}
	target, ok = paramID(c, "userId")
	return
}

func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.Groups.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (h *Handler) CreateGroup(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req groupRequest
	if !bind(c, &req) {
		return
	}
	in := service.GroupInput{Name: req.Name, Description: req.Description, IsPublic: true}
	if req.IsPublic != nil {
		in.IsPublic = *req.IsPublic
	}
	group, err := h.Groups.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *Handler) MyGroups(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	memberships, err := h.Groups.Mine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": memberships})
}

func (h *Handler) GetGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.Groups.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) UpdateGroup(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req groupPatchRequest
	if !bind(c, &req) {
		return
	}
	group, err := h.Groups.Update(c.Request.Context(), id, userID, service.GroupPatch{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *Handler) DeleteGroup(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	if err := h.Groups.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) JoinGroup(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	m, err := h.Groups.Join(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) LeaveGroup(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	if err := h.Groups.Leave(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ApproveGroupRequest(c *gin.Context) {
	groupID, actorID, target, ok := groupAndTarget(c)
	if !ok {
		return
	}
	m, err := h.Groups.Approve(c.Request.Context(), groupID, actorID, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) RejectGroupRequest(c *gin.Context) {
	groupID, actorID, target, ok := groupAndTarget(c)
	if !ok {
		return
	}
	if err := h.Groups.Reject(c.Request.Context(), groupID, actorID, target); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ManageGroupRole(c *gin.Context) {
	id, actorID, ok := ownedID(c)
	if !ok {
		return
	}
	var req roleRequest
	if !bind(c, &req) {
		return
	}
	target, err := parseUUID("user_id", req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	m, err := h.Groups.ManageRole(c.Request.Context(), id, actorID, target, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) KickGroupMember(c *gin.Context) {
	groupID, actorID, target, ok := groupAndTarget(c)
	if !ok {
		return
	}
	if err := h.Groups.Kick(c.Request.Context(), groupID, actorID, target); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GroupMessages(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	msgs, err := h.Groups.Messages(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) PostGroupMessage(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req messageRequest
	if !bind(c, &req) {
		return
	}
	msg, err := h.Groups.PostMessage(c.Request.Context(), id, userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
