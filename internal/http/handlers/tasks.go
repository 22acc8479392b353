package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"habitquest/internal/domain"
	"habitquest/internal/service"
)

type taskRequest struct {
	Title      string            `json:"title"`
	Notes      *string           `json:"notes"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

type taskPatchRequest struct {
	Title      *string            `json:"title"`
	Notes      *string            `json:"notes"`
	Difficulty *domain.Difficulty `json:"difficulty"`
}

func (r taskPatchRequest) patch() service.TaskPatch {
	return service.TaskPatch{Title: r.Title, Notes: r.Notes, Difficulty: r.Difficulty}
}

type difficultyRequest struct {
	Difficulty domain.Difficulty `json:"difficulty" binding:"required"`
}

// Habits

type habitRequest struct {
	taskRequest
	Type domain.HabitType `json:"type"`
}

type habitPatchRequest struct {
	taskPatchRequest
	Type     *domain.HabitType `json:"type"`
	IsPaused *bool             `json:"is_paused"`
}

type habitLogRequest struct {
	Completed *bool   `json:"completed" binding:"required"`
	Notes     *string `json:"notes"`
}

func (h *Handler) ListHabits(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	habits, err := h.Habits.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

func (h *Handler) CreateHabit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req habitRequest
	if !bind(c, &req) {
		return
	}
	habit, err := h.Habits.Create(c.Request.Context(), userID, service.CreateHabitInput{
		Title:      req.Title,
		Notes:      req.Notes,
		Difficulty: req.Difficulty,
		Type:       req.Type,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, habit)
}

func (h *Handler) GetHabit(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	habit, err := h.Habits.Get(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

func (h *Handler) UpdateHabit(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req habitPatchRequest
	if !bind(c, &req) {
		return
	}
	habit, err := h.Habits.Update(c.Request.Context(), id, userID, service.HabitPatch{
		TaskPatch: req.patch(),
		Type:      req.Type,
		IsPaused:  req.IsPaused,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

func (h *Handler) LogHabit(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req habitLogRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Habits.Log(c.Request.Context(), id, userID, *req.Completed, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) HabitLogs(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	logs, err := h.Habits.Logs(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *Handler) PayToUpdateHabit(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req difficultyRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Habits.PayToUpdate(c.Request.Context(), id, userID, req.Difficulty)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HabitDeletionQuote tells the client whether removal is free or what it costs.
func (h *Handler) HabitDeletionQuote(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	quote, err := h.Habits.DeletionQuote(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) PayToDeleteHabit(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	res, err := h.Habits.PayToDelete(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RemoveHabit(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	if err := h.Habits.Remove(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dailies

type completeRequest struct {
	Notes *string `json:"notes"`
}

func (h *Handler) ListDailies(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	dailies, err := h.Dailies.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dailies": dailies})
}

func (h *Handler) CreateDaily(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req taskRequest
	if !bind(c, &req) {
		return
	}
	daily, err := h.Dailies.Create(c.Request.Context(), userID, service.CreateDailyInput{
		Title:      req.Title,
		Notes:      req.Notes,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, daily)
}

func (h *Handler) GetDaily(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	daily, err := h.Dailies.Get(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, daily)
}

func (h *Handler) UpdateDaily(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req taskPatchRequest
	if !bind(c, &req) {
		return
	}
	daily, err := h.Dailies.Update(c.Request.Context(), id, userID, req.patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, daily)
}

func (h *Handler) CompleteDaily(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	// the body is optional
	var req completeRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	res, err := h.Dailies.Complete(c.Request.Context(), id, userID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DailyLogs(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	logs, err := h.Dailies.Logs(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *Handler) PayToUpdateDaily(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req difficultyRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Dailies.PayToUpdate(c.Request.Context(), id, userID, req.Difficulty)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) PayToDeleteDaily(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	res, err := h.Dailies.PayToDelete(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RemoveDaily(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	if err := h.Dailies.Remove(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Todos

type todoRequest struct {
	taskRequest
	DueDate *time.Time `json:"due_date"`
}

type todoPatchRequest struct {
	taskPatchRequest
	DueDate *time.Time `json:"due_date"`
}

func (h *Handler) ListTodos(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	todos, err := h.Todos.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"todos": todos})
}

func (h *Handler) CreateTodo(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req todoRequest
	if !bind(c, &req) {
		return
	}
	todo, err := h.Todos.Create(c.Request.Context(), userID, service.CreateTodoInput{
		Title:      req.Title,
		Notes:      req.Notes,
		Difficulty: req.Difficulty,
		DueDate:    req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *Handler) GetTodo(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	todo, err := h.Todos.Get(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *Handler) UpdateTodo(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req todoPatchRequest
	if !bind(c, &req) {
		return
	}
	todo, err := h.Todos.Update(c.Request.Context(), id, userID, service.TodoPatch{
		TaskPatch: req.patch(),
		DueDate:   req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *Handler) CompleteTodo(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	res, err := h.Todos.Complete(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) PayToUpdateTodo(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	var req difficultyRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Todos.PayToUpdate(c.Request.Context(), id, userID, req.Difficulty)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RemoveTodo(c *gin.Context) {
	id, userID, ok := ownedID(c)
	if !ok {
		return
	}
	if err := h.Todos.Remove(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
