package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/planbiir/gpause/internal/pause"
	"github.com/planbiir/gpause/internal/service"
	"github.com/planbiir/gpause/internal/store"
)

// detectionQuery carries per-request threshold overrides.
type detectionQuery struct {
	DistStart       *float64 `form:"dist_start"`
	DistEnd         *float64 `form:"dist_end"`
	TimeWindowStart *float64 `form:"time_window_start"`
	TimeWindowEnd   *float64 `form:"time_window_end"`
	PaceStart       *float64 `form:"pace_start"`
	PaceEnd         *float64 `form:"pace_end"`
	NStart          *int     `form:"n_start"`
	NEnd            *int     `form:"n_end"`
	DensityThresh   *float64 `form:"density_thresh"`
	DensityWindow   *float64 `form:"density_window"`
	Source          string   `form:"source"`
}

func (q detectionQuery) overrides() bool {
	return q.DistStart != nil || q.DistEnd != nil || q.TimeWindowStart != nil ||
		q.TimeWindowEnd != nil || q.PaceStart != nil || q.PaceEnd != nil ||
		q.NStart != nil || q.NEnd != nil || q.DensityThresh != nil || q.DensityWindow != nil
}

func (q detectionQuery) apply(cfg pause.Config) pause.Config {
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setFloat(&cfg.DistStart, q.DistStart)
	setFloat(&cfg.DistEnd, q.DistEnd)
	setFloat(&cfg.TimeWindowStart, q.TimeWindowStart)
	setFloat(&cfg.TimeWindowEnd, q.TimeWindowEnd)
	setFloat(&cfg.PaceStart, q.PaceStart)
	setFloat(&cfg.PaceEnd, q.PaceEnd)
	setFloat(&cfg.DensityThresh, q.DensityThresh)
	setFloat(&cfg.DensityWindow, q.DensityWindow)
	if q.NStart != nil {
		cfg.NStart = *q.NStart
	}
	if q.NEnd != nil {
		cfg.NEnd = *q.NEnd
	}
	return cfg
}

// createAnalysis handles POST /api/v1/analyses. The GPX document is the raw
// body, or the "file" field of a multipart form.
func (s *Server) createAnalysis(c *gin.Context) {
	var q detectionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	analyzer := s.analyzer
	if q.overrides() {
		var err error
		analyzer, err = s.analyzer.WithConfig(q.apply(s.analyzer.Config()))
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	body, source, err := uploadedTrack(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer body.Close()

	if q.Source != "" {
		source = q.Source
	}

	r, err := analyzer.AnalyzeGPX(c.Request.Context(), body, source)
	if err != nil {
		s.fail(c, err)
		return
	}

	status := http.StatusOK
	if s.store != nil {
		if _, err := s.store.Save(c.Request.Context(), r); err != nil {
			s.fail(c, err)
			return
		}
		status = http.StatusCreated
	}

	c.JSON(status, r)
}

func uploadedTrack(c *gin.Context) (io.ReadCloser, string, error) {
	if c.ContentType() != "multipart/form-data" {
		return c.Request.Body, "upload", nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	return f, header.Filename, nil
}

// listAnalyses handles GET /api/v1/analyses
func (s *Server) listAnalyses(c *gin.Context) {
	if s.store == nil {
		errorJSON(c, http.StatusServiceUnavailable, "storage is disabled")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	entries, err := s.store.List(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": entries})
}

// getAnalysis handles GET /api/v1/analyses/:id
func (s *Server) getAnalysis(c *gin.Context) {
	if s.store == nil {
		errorJSON(c, http.StatusServiceUnavailable, "storage is disabled")
		return
	}

	r, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// fail maps err to a status code and writes it.
func (s *Server) fail(c *gin.Context, err error) {
	c.Error(err)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		errorJSON(c, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, store.ErrNotFound):
		errorJSON(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidGPX), errors.Is(err, http.ErrMissingFile):
		errorJSON(c, http.StatusBadRequest, err.Error())
	case service.IsInvalidInput(err):
		errorJSON(c, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.WithError(err).Error("Request failed")
		errorJSON(c, http.StatusInternalServerError, "internal error")
	}
}

func errorJSON(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
