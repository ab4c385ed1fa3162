package http

import (
	"context"
	"net/http"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Items      *app.ItemService
	Answers    *app.AnswerService
	Metrics    *app.MetricService
	Auth       *app.AuthService
	Challenges *app.ChallengeService
	Sequences  app.SequenceAllocator
	// Health reports whether the backing store is reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

type handler struct {
	svc      Services
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// NewRouter wires every route onto a gin engine.
func NewRouter(svc Services, log *logger.Logger) *gin.Engine {
	h := &handler{
		svc: svc,
		log: log.With("component", "http"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	r := gin.New()
	r.Use(gin.Recovery(), CORS(), RequestLogger(h.log))

	r.GET("/healthz", h.health)
	r.POST("/users/register", h.register)
	r.POST("/users/token", h.token)
	r.GET("/metrics", h.listMetrics)
	r.GET("/metrics/ws", h.metricsFeed)

	authed := r.Group("/", RequireAuth(svc.Auth))
	authed.GET("/users", h.listUsers)
	authed.GET("/users/:id", h.getUser)
	authed.PUT("/users/:id", h.updateUser)
	authed.DELETE("/users/:id", h.deleteUser)

	authed.POST("/items", h.createItem)
	authed.GET("/items", h.listItems)
	authed.DELETE("/items", h.deleteAllItems)
	authed.GET("/items/:id", h.getItem)
	authed.PUT("/items/:id", h.updateItem)
	authed.DELETE("/items/:id", h.deleteItem)

	authed.GET("/items/:id/answers", h.listAnswers)
	authed.POST("/items/:id/answer", h.addAnswer)
	authed.PUT("/items/:id/answer/:answer_id", h.editAnswer)
	authed.DELETE("/items/:id/answer/:answer_id", h.deleteAnswer)

	authed.POST("/metrics/reset/:id", h.resetMetric)
	authed.POST("/sequences/:name/next", h.nextSequence)

	authed.POST("/challenges", h.createChallenge)
	authed.GET("/challenges", h.listChallenges)
	authed.GET("/challenges/:id", h.getChallenge)
	authed.PUT("/challenges/:id", h.updateChallenge)
	authed.DELETE("/challenges/:id", h.deleteChallenge)

	return r
}

func (h *handler) health(c *gin.Context) {
	if h.svc.Health != nil {
		if err := h.svc.Health(c.Request.Context()); err != nil {
			h.log.Error("health check failed", "error", err)
			c.String(http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
