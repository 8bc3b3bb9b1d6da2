package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"isoplan/app"
	"isoplan/domain/core"
	"isoplan/domain/route"
	"isoplan/internal"
	"isoplan/internal/errors"
	"isoplan/internal/report"
	"isoplan/ports"
)

// Request limits
const (
	MaxBatchItems     = 1000
	DefaultCurvePoint = 100
	MaxCurvePoints    = 10000
)

// EvaluateRequest evaluates a registered route, or an inline descriptor when
// Route is set.
type EvaluateRequest struct {
	RouteID    core.RouteID      `json:"route_id"`
	Route      *route.Descriptor `json:"route,omitempty"`
	Conditions route.Conditions  `json:"conditions"`
}

// BatchRequest evaluates many routes. BatchID is optional; choosing it lets
// a client subscribe to /v1/batch/events before the batch starts.
type BatchRequest struct {
	BatchID string          `json:"batch_id,omitempty"`
	Items   []app.BatchItem `json:"items"`
}

// CurveRequest samples the activity history of a registered route.
type CurveRequest struct {
	RouteID      core.RouteID     `json:"route_id"`
	Conditions   route.Conditions `json:"conditions"`
	DecaySeconds float64          `json:"decay_s"`
	Points       int              `json:"points"`
}

// PlanningHandler serves the planning endpoints
type PlanningHandler struct {
	service  *app.PlanningService
	hub      *SSEHub
	validate *validator.Validate
	logger   *internal.Logger
}

// NewPlanningHandler creates a planning handler
func NewPlanningHandler(service *app.PlanningService, hub *SSEHub, logger *internal.Logger) *PlanningHandler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PlanningHandler{
		service:  service,
		hub:      hub,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *PlanningHandler) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func (h *PlanningHandler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, errors.InvalidInput("malformed request body: "+err.Error()))
		return false
	}
	return true
}

// ListRoutes returns the registry, optionally filtered with ?product=.
func (h *PlanningHandler) ListRoutes(c *gin.Context) {
	routes, err := h.service.Routes(c.Request.Context(), c.Query("product"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	fingerprint, err := h.service.RegistryFingerprint(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "count": len(routes), "registry_fingerprint": fingerprint})
}

// GetRoute returns one route descriptor.
func (h *PlanningHandler) GetRoute(c *gin.Context) {
	d, err := h.service.Route(c.Request.Context(), core.RouteID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Evaluate evaluates and scores one route.
func (h *PlanningHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if !h.bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	var (
		ev  ports.Evaluation
		err error
	)
	if req.Route != nil {
		d, derr := route.NewDescriptor(*req.Route)
		if derr != nil {
			h.respondError(c, derr)
			return
		}
		ev, err = h.service.EvaluateRoute(ctx, d, req.Conditions)
	} else {
		if req.RouteID == "" {
			h.respondError(c, errors.InvalidInput("route_id or route is required"))
			return
		}
		ev, err = h.service.Evaluate(ctx, req.RouteID, req.Conditions)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// EvaluateBatch evaluates many routes concurrently and returns when all are done.
func (h *PlanningHandler) EvaluateBatch(c *gin.Context) {
	var req BatchRequest
	if !h.bind(c, &req) {
		return
	}
	if err := checkBatchSize(req.Items); err != nil {
		h.respondError(c, err)
		return
	}

	var progress app.ProgressFunc
	if h.hub != nil {
		progress = h.hub.Progress
	}
	res, err := h.service.EvaluateBatchWithProgress(c.Request.Context(), core.BatchID(req.BatchID), req.Items, progress)
	if err != nil {
		h.failBatch(req.BatchID, err)
		h.respondError(c, err)
		return
	}
	h.completeBatch(res)
	c.JSON(http.StatusOK, res)
}

// StartBatch runs a batch in the background and answers 202 with its ID.
// Progress is published on /v1/batch/events.
func (h *PlanningHandler) StartBatch(c *gin.Context) {
	var req BatchRequest
	if !h.bind(c, &req) {
		return
	}
	if err := checkBatchSize(req.Items); err != nil {
		h.respondError(c, err)
		return
	}
	id := core.BatchID(req.BatchID)
	if core.ID(id).IsEmpty() {
		id = core.NewBatchID()
	}

	var progress app.ProgressFunc
	if h.hub != nil {
		progress = h.hub.Progress
	}
	go func() {
		res, err := h.service.EvaluateBatchWithProgress(context.Background(), id, req.Items, progress)
		if err != nil {
			h.logger.Error("batch %s: %v", id, err)
			h.failBatch(id.String(), err)
			return
		}
		h.completeBatch(res)
	}()

	c.JSON(http.StatusAccepted, gin.H{"batch_id": id, "events": "/v1/batch/events?batch_id=" + id.String()})
}

func (h *PlanningHandler) completeBatch(res app.BatchResult) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(BatchEvent{
		BatchID:   res.BatchID.String(),
		EventType: EventComplete,
		Progress:  1,
		Data:      gin.H{"failed": res.Failed(), "runtime_ms": res.RuntimeMs, "registry_fingerprint": res.Fingerprint},
	})
}

func (h *PlanningHandler) failBatch(id string, err error) {
	if h.hub == nil || id == "" {
		return
	}
	h.hub.Broadcast(BatchEvent{BatchID: id, EventType: EventFailed, Data: gin.H{"error": err.Error()}})
}

func checkBatchSize(items []app.BatchItem) error {
	switch {
	case len(items) == 0:
		return errors.InvalidInput("items must not be empty")
	case len(items) > MaxBatchItems:
		return errors.InvalidInput("too many items in batch")
	}
	return nil
}

// SolveChain solves a decay network.
func (h *PlanningHandler) SolveChain(c *gin.Context) {
	var req app.ChainRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.service.SolveChain(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ActivityCurve samples build-up and decay of one route.
func (h *PlanningHandler) ActivityCurve(c *gin.Context) {
	var req CurveRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Points == 0 {
		req.Points = DefaultCurvePoint
	}
	if req.Points > MaxCurvePoints {
		h.respondError(c, errors.InvalidInput("too many curve points"))
		return
	}
	curve, err := h.service.ActivityCurve(c.Request.Context(), req.RouteID, req.Conditions, req.DecaySeconds, req.Points)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route_id": req.RouteID, "points": curve})
}

// EstimateSource computes flux and derating for a point-source geometry.
func (h *PlanningHandler) EstimateSource(c *gin.Context) {
	var req app.SourceRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(c, errors.ValidationError(err.Error()))
		return
	}
	est, err := h.service.EstimateSource(req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

// ListEvaluations returns stored evaluations, oldest first.
func (h *PlanningHandler) ListEvaluations(c *gin.Context) {
	evs, err := h.service.Evaluations(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": evs, "count": len(evs)})
}

// GetEvaluation returns one stored evaluation.
func (h *PlanningHandler) GetEvaluation(c *gin.Context) {
	ev, err := h.service.Evaluation(c.Request.Context(), core.EvaluationID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// Report renders a stored evaluation as HTML, or markdown with ?format=md.
func (h *PlanningHandler) Report(c *gin.Context) {
	ev, err := h.service.Evaluation(c.Request.Context(), core.EvaluationID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	md := report.Markdown(ev)
	if c.Query("format") == "md" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(md))
}

// Health reports liveness.
func (h *PlanningHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}
