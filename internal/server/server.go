package server

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/planbiir/gpause/internal/metrics"
	"github.com/planbiir/gpause/internal/report"
	"github.com/planbiir/gpause/internal/service"
	"github.com/planbiir/gpause/internal/store"
)

// Store is the persistence the API needs. *store.Store implements it.
type Store interface {
	Save(ctx context.Context, r *report.Report) (string, error)
	Get(ctx context.Context, id string) (*report.Report, error)
	List(ctx context.Context, limit int) ([]store.Entry, error)
}

// Server serves the analysis API.
type Server struct {
	analyzer  *service.Analyzer
	store     Store
	log       logrus.FieldLogger
	maxUpload int64
}

// New returns a Server. store may be nil, in which case analyses are not
// persisted and the read endpoints answer 503.
func New(analyzer *service.Analyzer, store Store, logger logrus.FieldLogger, maxUploadMB int) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		analyzer:  analyzer,
		store:     store,
		log:       logger,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.log))
	router.Use(metrics.Middleware())

	router.GET("/health", s.health)
	router.GET("/metrics", s.metrics())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyses", s.createAnalysis)
		v1.GET("/analyses", s.listAnalyses)
		v1.GET("/analyses/:id", s.getAnalysis)
	}

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"store":  s.store != nil,
	})
}

// metrics refreshes the pool gauges before each scrape.
func (s *Server) metrics() gin.HandlerFunc {
	handler := metrics.Handler()
	return func(c *gin.Context) {
		if st, ok := s.store.(interface{ Stats() sql.DBStats }); ok {
			metrics.UpdateDBMetrics(st.Stats())
		}
		handler(c)
	}
}
