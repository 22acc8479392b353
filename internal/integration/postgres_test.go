package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"habitquest/internal/clock"
	"habitquest/internal/config"
	"habitquest/internal/domain"
	"habitquest/internal/economy"
	httpserver "habitquest/internal/http"
	"habitquest/internal/http/handlers"
	"habitquest/internal/repository"
	"habitquest/internal/service"
	"habitquest/internal/store"
	"habitquest/internal/ws"
)

func applyMigrations(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	require.NoError(t, err)
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		require.NoError(t, err)
		_, err = pool.Exec(context.Background(), string(b))
		require.NoError(t, err, "apply migration %s", f.Name())
	}
}

type env struct {
	t     *testing.T
	ctx   context.Context
	store *repository.Store
	deps  *service.Deps
	auth  *service.AuthService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	service.InitJWT("integration-secret", time.Hour)

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	applyMigrations(t, pool)

	st := repository.NewStore(pool)
	deps := service.NewDeps(st, economy.Default(), clock.RealClock{})
	auth := service.NewAuthService(deps)
	auth.HashCost = bcrypt.MinCost
	return &env{t: t, ctx: context.Background(), store: st, deps: deps, auth: auth}
}

// register creates a user with a unique name so reruns do not collide.
func (e *env) register(prefix string) *service.AuthResult {
	e.t.Helper()
	name := prefix + "_" + uuid.NewString()[:8]
	res, err := e.auth.Register(e.ctx, service.RegisterInput{Email: name + "@example.com", Username: name, Password: "password123"})
	require.NoError(e.t, err)
	return res
}

func (e *env) grant(userID uuid.UUID, gold int64) {
	e.t.Helper()
	require.NoError(e.t, e.store.RunInTx(e.ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.AdjustBalance(ctx, userID, gold, 0)
		return err
	}))
}

func TestPostgresRegisterAndHabitLog(t *testing.T) {
	e := newEnv(t)
	u := e.register("habit")

	profile, err := e.auth.Profile(e.ctx, u.User.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 100, profile.User.Gold)
	assert.Equal(t, 100, profile.Pet.Health)

	habits := service.NewHabitService(e.deps)
	h, err := habits.Create(e.ctx, u.User.ID, service.CreateHabitInput{Title: "Read", Difficulty: domain.DifficultyMedium})
	require.NoError(t, err)

	res, err := habits.Log(e.ctx, h.ID, u.User.ID, true, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 110, res.Gold)
	assert.Equal(t, 1, res.Habit.CurrentStreak)

	_, err = habits.Log(e.ctx, h.ID, u.User.ID, true, nil)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	txs, err := e.auth.Transactions(e.ctx, u.User.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, txs)
	assert.EqualValues(t, 10, txs[0].Amount)
}

func TestPostgresDuplicateEmailConflicts(t *testing.T) {
	e := newEnv(t)
	u := e.register("dup")
	_, err := e.auth.Register(e.ctx, service.RegisterInput{Email: u.User.Email, Username: "other_" + uuid.NewString()[:8], Password: "password123"})
	assert.True(t, domain.IsKind(err, domain.KindConflict), "error: %v", err)
}

// Concurrent redemptions never spend more than the balance.
func TestPostgresConcurrentRedeem(t *testing.T) {
	e := newEnv(t)
	u := e.register("redeem")
	rewards := service.NewRewardService(e.deps)
	r, err := rewards.Create(e.ctx, u.User.ID, service.RewardInput{Title: "Coffee", Cost: 30})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rewards.Redeem(e.ctx, r.ID, u.User.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, domain.IsKind(err, domain.KindConflict), "error: %v", err)
	}
	assert.LessOrEqual(t, ok, 3)

	profile, err := e.auth.Profile(e.ctx, u.User.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 100-30*int64(ok), profile.User.Gold)
}

func TestPostgresGroupChatSocket(t *testing.T) {
	e := newEnv(t)
	owner := e.register("chat")
	e.grant(owner.User.ID, 150)

	hub := ws.NewHub()
	h := handlers.NewHandler(e.deps, hub, service.NewPetService(e.deps, nil, 0))
	g, err := h.Groups.Create(e.ctx, owner.User.ID, service.GroupInput{Name: "chat_" + uuid.NewString()[:8], IsPublic: true})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	httpserver.RegisterRoutes(r, h, handlers.NewHealthHandler(e.store, "test"), hub, &config.Config{
		APIRateLimit: 100, APIRateWindow: time.Minute,
		AuthRateLimit: 100, AuthRateWindow: time.Minute,
		ChatRateLimit: 100, ChatRateWindow: time.Minute,
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws/groups/" + g.ID.String() + "?token=" + owner.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() ws.Envelope {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		var env ws.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		return env
	}
	require.Equal(t, ws.MsgReady, read().Type)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/groups/"+g.ID.String()+"/messages", strings.NewReader(`{"content":"hello"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+owner.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	env := read()
	require.Equal(t, ws.MsgMessage, env.Type)
	var msg domain.GroupMessage
	require.NoError(t, json.Unmarshal(env.Payload, &msg))
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, owner.User.Username, msg.Username)
}
