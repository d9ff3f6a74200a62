// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/middleware"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
	"github.com/carterperez-dev/templates/membership-api/internal/user"
)

type Members interface {
	ResolveActor(ctx context.Context, userID, roleName string) (*user.Actor, error)
	Stats(ctx context.Context, actor *user.Actor) (*user.MemberStats, error)
}

type CardCounter interface {
	CountIssued(ctx context.Context, stateCode string) (int, error)
}

type Handler struct {
	members    Members
	cards      CardCounter
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	dbPing     func(ctx context.Context) error
	redisPing  func(ctx context.Context) error
}

type HandlerConfig struct {
	Members    Members
	Cards      CardCounter
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		members:    cfg.Members,
		cards:      cfg.Cards,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		dbPing:     cfg.DBPing,
		redisPing:  cfg.RedisPing,
	}
}

// RegisterRoutes mounts the dashboard for analytics roles and the system
// stats for system managers.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	table *role.Table,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.With(table.Require(role.ViewAnalytics)).
			Get("/admin/dashboard", h.GetDashboard)

		r.Group(func(r chi.Router) {
			r.Use(table.Require(role.ManageSystem))
			r.Get("/admin/stats", h.GetSystemStats)
			r.Get("/admin/stats/db", h.GetDatabaseStats)
			r.Get("/admin/stats/redis", h.GetRedisStats)
			r.Get("/admin/stats/runtime", h.GetRuntimeStats)
		})
	})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := h.members.ResolveActor(
		ctx,
		middleware.GetUserID(ctx),
		middleware.GetUserRole(ctx),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.Unauthorized(w, "account no longer exists")
			return
		}
		core.JSONError(w, err)
		return
	}

	members, err := h.members.Stats(ctx, actor)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	scope := ""
	if !actor.AllStates {
		scope = actor.StateCode
	}

	issued, err := h.cards.CountIssued(ctx, scope)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	resp := DashboardResponse{
		Scope:       "national",
		Members:     *members,
		CardsIssued: issued,
	}
	if scope != "" {
		resp.Scope = scope
	}
	if members.Total > 0 {
		resp.CardCoverage = float64(issued) / float64(members.Total)
	}

	core.OK(w, resp)
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: pingOK(ctx, h.dbPing),
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: pingOK(ctx, h.redisPing),
			Stats:   h.getRedisStats(),
		},
		Runtime: readRuntimeStats(),
	})
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntimeStats())
}

func pingOK(ctx context.Context, ping func(context.Context) error) bool {
	if ping == nil {
		return false
	}
	return ping(ctx) == nil
}

func readRuntimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}
