package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"habitquest/internal/config"
	"habitquest/internal/http/handlers"
	"habitquest/internal/http/middleware"
	"habitquest/internal/ws"
)

// RegisterRoutes mounts the probes, /metrics, the JSON API under /api/v1 and
// the group chat socket.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, cfg *config.Config) {
	r.Use(middleware.CORS(cfg.AllowedOrigin), middleware.RequestLogger(), middleware.Metrics())

	// no rate limiting
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit("api", cfg.APIRateLimit, cfg.APIRateWindow, middleware.ByIP))
	registerAPIRoutes(v1, h, cfg)

	r.GET("/ws/groups/:id", ws.HandleGroupWS(hub, h.Groups, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	authRL := middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow, middleware.ByIP)
	chatRL := middleware.RateLimit("chat", cfg.ChatRateLimit, cfg.ChatRateWindow, middleware.ByUser)
	jwt := middleware.JWT()

	// Auth
	api.POST("/auth/register", authRL, h.Register)
	api.POST("/auth/login", authRL, h.Login)
	api.GET("/me", jwt, h.Me)
	api.GET("/me/transactions", jwt, h.MyTransactions)
	api.GET("/me/activity", jwt, h.MyActivity)

	habits := api.Group("/habits", jwt)
	{
		habits.GET("", h.ListHabits)
		habits.POST("", h.CreateHabit)
		habits.GET("/:id", h.GetHabit)
		habits.PATCH("/:id", h.UpdateHabit)
		habits.POST("/:id/log", h.LogHabit)
		habits.GET("/:id/logs", h.HabitLogs)
		habits.PATCH("/:id/pay-to-update", h.PayToUpdateHabit)
		habits.GET("/:id/deletion", h.HabitDeletionQuote)
		habits.DELETE("/:id/pay-to-delete", h.PayToDeleteHabit)
		habits.DELETE("/:id", h.RemoveHabit)
	}

	dailies := api.Group("/dailies", jwt)
	{
		dailies.GET("", h.ListDailies)
		dailies.POST("", h.CreateDaily)
		dailies.GET("/:id", h.GetDaily)
		dailies.PATCH("/:id", h.UpdateDaily)
		dailies.POST("/:id/complete", h.CompleteDaily)
		dailies.GET("/:id/logs", h.DailyLogs)
		dailies.PATCH("/:id/pay-to-update", h.PayToUpdateDaily)
		dailies.DELETE("/:id/pay-to-delete", h.PayToDeleteDaily)
		dailies.DELETE("/:id", h.RemoveDaily)
	}

	todos := api.Group("/todos", jwt)
	{
		todos.GET("", h.ListTodos)
		todos.POST("", h.CreateTodo)
		todos.GET("/:id", h.GetTodo)
		todos.PATCH("/:id", h.UpdateTodo)
		todos.POST("/:id/complete", h.CompleteTodo)
		todos.PATCH("/:id/pay-to-update", h.PayToUpdateTodo)
		todos.DELETE("/:id", h.RemoveTodo)
	}

	rewards := api.Group("/rewards", jwt)
	{
		rewards.GET("", h.ListRewards)
		rewards.POST("", h.CreateReward)
		rewards.PATCH("/:id", h.UpdateReward)
		rewards.DELETE("/:id", h.DeleteReward)
		rewards.POST("/:id/redeem", h.RedeemReward)
	}

	// Groups: discovery is public, everything else needs a token
	api.GET("/groups", h.ListGroups)
	api.GET("/groups/mine", jwt, h.MyGroups)
	api.GET("/groups/:id", h.GetGroup)
	groups := api.Group("/groups", jwt)
	{
		groups.POST("", h.CreateGroup)
		groups.PATCH("/:id", h.UpdateGroup)
		groups.DELETE("/:id", h.DeleteGroup)
		groups.POST("/:id/join", h.JoinGroup)
		groups.DELETE("/:id/leave", h.LeaveGroup)
		groups.POST("/:id/requests/:userId/approve", h.ApproveGroupRequest)
		groups.DELETE("/:id/requests/:userId", h.RejectGroupRequest)
		groups.PATCH("/:id/members", h.ManageGroupRole)
		groups.DELETE("/:id/members/:userId", h.KickGroupMember)
		groups.GET("/:id/messages", h.GroupMessages)
		groups.POST("/:id/messages", chatRL, h.PostGroupMessage)
	}

	api.GET("/challenges", h.ListChallenges)
	api.GET("/challenges/mine", jwt, h.MyChallenges)
	api.GET("/challenges/:id", h.GetChallenge)
	api.GET("/challenges/:id/leaderboard", h.ChallengeLeaderboard)
	challenges := api.Group("/challenges", jwt)
	{
		challenges.POST("", h.CreateChallenge)
		challenges.DELETE("/:id", h.DeleteChallenge)
		challenges.POST("/:id/join", h.JoinChallenge)
		challenges.POST("/:id/start", h.StartChallenge)
		challenges.POST("/:id/distribute-rewards", h.DistributeChallengeRewards)

		challenges.POST("/participation/:id/approve", h.ApproveParticipation)
		challenges.DELETE("/participation/:id/reject", h.RejectParticipation)
		challenges.PATCH("/participation/:id/progress", h.UpdateParticipationProgress)
		challenges.POST("/participation/:id/complete", h.CompleteParticipation)
		challenges.DELETE("/participation/:id", h.LeaveChallenge)
	}

	api.GET("/pet/shop", h.Shop)
	pet := api.Group("/pet", jwt)
	{
		pet.GET("", h.GetPet)
		pet.PATCH("", h.RenamePet)
		pet.GET("/inventory", h.Inventory)
		pet.POST("/shop/buy/:itemId", h.BuyItem)
		pet.POST("/use", h.UseItem)
		pet.POST("/equip", h.EquipItem)
		pet.DELETE("/equip/:slot", h.UnequipSlot)
	}
}
