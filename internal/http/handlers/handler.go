package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/http/middleware"
	"habitquest/internal/logger"
	"habitquest/internal/service"
)

type Handler struct {
	Auth       *service.AuthService
	Habits     *service.HabitService
	Dailies    *service.DailyService
	Todos      *service.TodoService
	Rewards    *service.RewardService
	Groups     *service.GroupService
	Challenges *service.ChallengeService
	Pets       *service.PetService
}

// NewHandler builds every service over deps. Group messages go to b.
func NewHandler(deps *service.Deps, b service.MessageBroadcaster, pets *service.PetService) *Handler {
	return &Handler{
		Auth:       service.NewAuthService(deps),
		Habits:     service.NewHabitService(deps),
		Dailies:    service.NewDailyService(deps),
		Todos:      service.NewTodoService(deps),
		Rewards:    service.NewRewardService(deps),
		Groups:     service.NewGroupService(deps, b),
		Challenges: service.NewChallengeService(deps),
		Pets:       pets,
	}
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindForbidden:    http.StatusForbidden,
	domain.KindConflict:     http.StatusConflict,
	domain.KindBadRequest:   http.StatusBadRequest,
	domain.KindUnauthorized: http.StatusUnauthorized,
}

// respondError writes err as {"error","kind"}. Internal errors are logged
// and their message is hidden from the client.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		logger.FromContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "kind": domain.KindInternal})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func getUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		respondError(c, domain.Unauthorized("user not found"))
	}
	return id, ok
}

// bind decodes the JSON body into v, answering 400 on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, domain.Wrap(domain.KindBadRequest, "invalid request body", err))
		return false
	}
	return true
}

func parseUUID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.BadRequest("invalid %s", name)
	}
	return id, nil
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := parseUUID(name, c.Param(name))
	if err != nil {
		respondError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// ownedID reads the caller and the :id path parameter.
func ownedID(c *gin.Context) (id, userID uuid.UUID, ok bool) {
	if userID, ok = getUserID(c); !ok {
		return
	}
	id, ok = paramID(c, "id")
	return
}

func queryLimit(c *gin.Context, def, max int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, max)
}
