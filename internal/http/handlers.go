package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog/internal/domain"
	"catalog/internal/logging"
	"catalog/internal/metrics"
	"catalog/internal/session"
	"catalog/internal/web"
)

const sessionCookie = "catalog_session"

type Server struct {
	engine   *gin.Engine
	sessions *session.Store
	metrics  *metrics.Metrics
	seed     []domain.Product
}

// NewServer seed добавляется в каждую новую сессию
func NewServer(sessions *session.Store, m *metrics.Metrics, log *logrus.Logger, seed []domain.Product) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(log), accessLog(), observeDuration(m))
	s := &Server{engine: r, sessions: sessions, metrics: m, seed: seed}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	s.engine.GET("/healthz", s.healthz)
	s.engine.StaticFS("/static", http.FS(web.Static()))
	s.engine.GET("/", s.index)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/events", s.dispatchEvent)
		v1.GET("/products", s.listProducts)
	}
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Router /healthz [get]
func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.Len()})
}

// @Summary Editor page
// @Description Opens the editor, creating a session when the cookie is missing or stale
// @Tags editor
// @Produce html
// @Success 200 {string} string "document"
// @Failure 503 {object} map[string]string
// @Router / [get]
func (s *Server) index(c *gin.Context) {
	sess, err := s.currentSession(c)
	if errors.Is(err, session.ErrNotFound) {
		sess, err = s.newSession(c)
	}
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(sess.Document()))
}

type eventReq struct {
	Type   string            `json:"type" binding:"required,oneof=click submit"`
	Path   []int             `json:"path" binding:"required"`
	Fields map[string]string `json:"fields"`
}

type eventResp struct {
	Body       string `json:"body"`
	Dispatched bool   `json:"dispatched"`
}

// @Summary Dispatch UI event
// @Description Delivers a click or submit to the element at path and returns the new body markup
// @Tags editor
// @Accept json
// @Produce json
// @Param input body eventReq true "Event"
// @Success 200 {object} eventResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/events [post]
func (s *Server) dispatchEvent(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	var req eventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		return
	}
	ok, err := sess.Dispatch(s.requestContext(c, sess), session.Event{Type: req.Type, Path: req.Path, Fields: req.Fields})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	s.metrics.UIEvents.WithLabelValues(req.Type, strconv.FormatBool(ok)).Inc()
	c.JSON(http.StatusOK, eventResp{Body: sess.Body(), Dispatched: ok})
}

// @Summary List products
// @Description Catalog snapshot of the current session in insertion order
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 404 {object} map[string]string
// @Router /api/v1/products [get]
func (s *Server) listProducts(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess.Products(s.requestContext(c, sess)))
}

func (s *Server) currentSession(c *gin.Context) (*session.Session, error) {
	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		return nil, session.ErrNotFound
	}
	return s.sessions.Get(id)
}

func (s *Server) newSession(c *gin.Context) (*session.Session, error) {
	sess, err := s.sessions.Create(c.Request.Context())
	if err != nil {
		return nil, err
	}
	if len(s.seed) > 0 {
		if err := sess.Seed(s.requestContext(c, sess), s.seed); err != nil {
			return nil, err
		}
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookie, sess.ID, 0, "/", "", false, true)
	return sess, nil
}

func (s *Server) requestContext(c *gin.Context, sess *session.Session) context.Context {
	ctx := c.Request.Context()
	return logging.WithFields(ctx, logrus.Fields{"session": sess.ID})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
