package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/cptinfo/internal/logger"
	"github.com/samcharles93/cptinfo/internal/report"
	"github.com/samcharles93/cptinfo/internal/version"
	"github.com/samcharles93/cptinfo/pkg/cpt"
)

const DefaultMaxUploadBytes = 64 << 20

type Config struct {
	// MaxUploadBytes caps the request body. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64
	// Charset is used when a request does not name one.
	Charset       string
	StoreCapacity int
	Logger        logger.Logger
}

// Server exposes the decoder over HTTP. Every request decodes its own
// body; the only shared state is the report store.
type Server struct {
	store     *ReportStore
	maxUpload int64
	charset   string
	log       logger.Logger
	clock     func() time.Time
}

func NewServer(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return &Server{
		store:     NewReportStore(cfg.StoreCapacity),
		maxUpload: cfg.MaxUploadBytes,
		charset:   cfg.Charset,
		log:       cfg.Logger,
		clock:     time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	e.POST("/v1/inspect", s.handleInspect)
	e.GET("/v1/reports", s.handleListReports)
	e.GET("/v1/reports/:id", s.handleGetReport)
	e.DELETE("/v1/reports/:id", s.handleDeleteReport)
	e.GET("/v1/chunks", s.handleListChunks)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: version.Resolve()})
}

func (s *Server) handleInspect(c *echo.Context) error {
	req, opts, err := parseInspectRequest(c, s.charset)
	if err != nil {
		return writeInvalidParam(c, err)
	}

	body, err := readBody(c.Request().Body, s.maxUpload)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", err.Error(), "", "request_too_large")
		}
		return writeBadRequest(c, err.Error())
	}
	if len(body) == 0 {
		return writeBadRequest(c, "request body is empty")
	}

	container, decodeErr := cpt.Decode(body, opts)
	rep := report.Build(req.Name, container, decodeErr)
	if req.Store {
		s.store.Save(rep, s.clock())
	} else {
		rep.ID = newReportID()
	}

	log := s.log.With("id", rep.ID, "file", req.Name, "size", len(body))
	for _, a := range rep.Anomalies {
		log.Debug("anomaly", "kind", a.Kind, "block", a.Block, "offset", a.Offset)
	}
	status := http.StatusOK
	if decodeErr != nil {
		status = http.StatusUnprocessableEntity
		log.Warn("decode failed", "kind", rep.Error.Kind, "error", decodeErr)
	} else {
		log.Info("inspected", "version", rep.Version, "blocks", len(rep.Blocks), "anomalies", len(rep.Anomalies))
	}
	return writeReport(c, status, req.Format, rep)
}

func (s *Server) handleListReports(c *echo.Context) error {
	return c.JSON(http.StatusOK, ReportList{Object: "list", Data: s.store.List()})
}

func (s *Server) handleGetReport(c *echo.Context) error {
	format, err := parseFormat(c.QueryParam("format"))
	if err != nil {
		return writeInvalidParam(c, err)
	}
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "report not found")
	}
	return writeReport(c, http.StatusOK, format, rec.Report)
}

func (s *Server) handleDeleteReport(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "report not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":      id,
		"object":  "report.deleted",
		"deleted": true,
	})
}

func (s *Server) handleListChunks(c *echo.Context) error {
	ids := cpt.KnownChunks()
	out := ChunkList{Object: "list", Data: make([]ChunkInfo, 0, len(ids))}
	for _, id := range ids {
		out.Data = append(out.Data, ChunkInfo{ID: id.String(), Decoded: cpt.HasChunkHandler(id)})
	}
	return c.JSON(http.StatusOK, out)
}

var errBodyTooLarge = errors.New("request body too large")

func readBody(r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, limit)
	}
	return body, nil
}
