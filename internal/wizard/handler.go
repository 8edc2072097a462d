package wizard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"jobtailor/internal/analyses"
	"jobtailor/internal/documents"
	"jobtailor/internal/editor"
	"jobtailor/internal/export"
	"jobtailor/internal/outreach"
	"jobtailor/internal/shared/server/middleware"
	"jobtailor/internal/shared/server/respond"
	"jobtailor/internal/tailoring"
)

// multipart framing on top of the file itself
const maxUploadBody = documents.MaxUploadBytes + 1<<20

// Handler exposes the wizard over HTTP.
type Handler struct {
	Sessions *Sessions
	Exporter *export.Engine
}

// NewHandler constructs a Handler.
func NewHandler(sessions *Sessions, exporter *export.Engine) *Handler {
	return &Handler{Sessions: sessions, Exporter: exporter}
}

// RegisterRoutes attaches wizard routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	w := rg.Group("/wizard")
	w.GET("", h.view)
	w.POST("/start", h.transition((*Controller).Start))
	w.POST("/home", h.home)
	w.POST("/reload", h.reload)

	w.POST("/cv", h.importResume)
	w.DELETE("/cv", h.clearResume)
	w.POST("/cv/continue", h.transition((*Controller).ContinueToJob))
	w.POST("/job/back", h.transition((*Controller).BackToUpload))
	w.PUT("/job", h.setJob)
	w.POST("/analyze", h.analyze)
	w.POST("/job/modify", h.transition((*Controller).ModifyJob))

	w.POST("/payment/open", h.transition((*Controller).OpenPayment))
	w.POST("/payment/close", h.transition((*Controller).ClosePayment))
	w.POST("/payment", h.submitPayment)

	w.POST("/tailoring/back", h.transition((*Controller).BackToAnalysis))
	w.POST("/outreach", h.transition((*Controller).ContinueToOutreach))
	w.POST("/outreach/back", h.transition((*Controller).BackToTailoring))

	w.POST("/editor/open", h.transition((*Controller).OpenEditor))
	w.PUT("/editor", h.setDraft)
	w.POST("/editor/format", h.format)
	w.POST("/editor/save", h.saveEdit)
	w.POST("/editor/cancel", h.transition((*Controller).CancelEdit))

	w.GET("/exports/:asset", h.exportAsset)
	w.GET("/outreach/mailto", h.mailto)
	w.GET("/outreach/email", h.email)
}

func (h *Handler) controller(c *gin.Context) *Controller {
	return h.Sessions.Get(c.Request.Context(), middleware.SessionIDFromContext(c))
}

// respondView writes the current view and tags the request log with its step.
func respondView(c *gin.Context, ctrl *Controller, status int) {
	v := ctrl.View()
	c.Set(middleware.StepKey, string(v.Step))
	respond.JSON(c, status, v)
}

func (h *Handler) view(c *gin.Context) {
	respondView(c, h.controller(c), http.StatusOK)
}

func (h *Handler) transition(fn func(*Controller) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctrl := h.controller(c)
		if err := fn(ctrl); err != nil {
			writeError(c, ctrl, err)
			return
		}
		respondView(c, ctrl, http.StatusOK)
	}
}

func (h *Handler) home(c *gin.Context) {
	ctrl := h.controller(c)
	ctrl.Home()
	respondView(c, ctrl, http.StatusOK)
}

func (h *Handler) reload(c *gin.Context) {
	h.Sessions.Reload(middleware.SessionIDFromContext(c))
	respondView(c, h.controller(c), http.StatusOK)
}

func (h *Handler) importResume(c *gin.Context) {
	ctrl := h.controller(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	if err := ctrl.ImportResume(c.Request.Context(), fileHeader.Filename, file); err != nil {
		writeError(c, ctrl, err)
		return
	}
	respondView(c, ctrl, http.StatusOK)
}

func (h *Handler) clearResume(c *gin.Context) {
	ctrl := h.controller(c)
	if err := ctrl.ClearResume(c.Request.Context()); err != nil {
		writeError(c, ctrl, err)
		return
	}
	respondView(c, ctrl, http.StatusOK)
}

func (h *Handler) setJob(c *gin.Context) {
	ctrl := h.controller(c)
	var job documents.JobPosting
	if err := c.ShouldBindJSON(&job); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := ctrl.SetJob(c.Request.Context(), job); err != nil {
		writeError(c, ctrl, err)
		return
	}
	respondView(c, ctrl, http.StatusOK)
}

func (h *Handler) analyze(c *gin.Context) {
	ctrl := h.controller(c)
	if err := ctrl.Analyze(c.Request.Context()); err != nil {
		writeError(c, ctrl, err)
		return
	}
	respondView(c, ctrl, http.StatusOK)
}

func (h *Handler) submitPayment(c *gin.Context) {
	ctrl := h.controller(c)
	var details PaymentDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := ctrl.SubmitPayment(c.Request.Context(), details); err != nil {
		writeError(c, ctrl, err)
		return
	}
	respondView(c, ctrl, http.StatusOK)
}

type draftRequest struct {
	Text      string            `json:"text"`
	Selection *editor.Selection `json:"selection"`
}

func (h *Handler) setDraft(c *gin.Context) {
	ctrl := h.controller(c)
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := ctrl.SetDraft(req.Text, req.Selection); err != nil {
		writeError(c, ctrl, err)
		return
	}
	respondView(c, ctrl, http.StatusOK)
}

type formatRequest struct {
	Kind      string           `json:"kind"`
	Selection editor.Selection `json:"selection"`
}

func (h *Handler) format(c *gin.Context) {
	ctrl := h.controller(c)
	var req formatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	kind, err := editor.ParseKind(req.Kind)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	if err := ctrl.Format(kind, req.Selection); err != nil {
		writeError(c, ctrl, err)
		return
	}
	respondView(c, ctrl, http.StatusOK)
}

func (h *Handler) saveEdit(c *gin.Context) {
	ctrl := h.controller(c)
	if err := ctrl.SaveEdit(c.Request.Context()); err != nil {
		writeError(c, ctrl, err)
		return
	}
	respondView(c, ctrl, http.StatusOK)
}

func (h *Handler) exportAsset(c *gin.Context) {
	ctrl := h.controller(c)
	text, stem, err := ctrl.Asset(c.Param("asset"))
	if err != nil {
		writeError(c, ctrl, err)
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	file, err := h.Exporter.Export(c.Request.Context(), text, stem, format)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "export_failed", "failed to render document", nil)
		return
	}
	respond.Attachment(c, file.Name, file.ContentType, file.Data)
}

func (h *Handler) mailto(c *gin.Context) {
	ctrl := h.controller(c)
	url, err := ctrl.MailtoURL(c.Query("to"), c.Query("subject"))
	if err != nil {
		writeError(c, ctrl, err)
		return
	}
	respond.OK(c, gin.H{"url": url})
}

func (h *Handler) email(c *gin.Context) {
	ctrl := h.controller(c)
	body, err := ctrl.EmailBody()
	if err != nil {
		writeError(c, ctrl, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// writeError maps controller errors to the error envelope. Failures that
// set the banner carry the current view as details.
func writeError(c *gin.Context, ctrl *Controller, err error) {
	var (
		importErr     *documents.ImportError
		analysisErr   *analyses.AnalysisError
		tailoringErr  *tailoring.TailoringError
		validationErr *documents.ValidationError
		fieldErrs     validator.ValidationErrors
	)
	v := ctrl.View()
	c.Set(middleware.StepKey, string(v.Step))

	switch {
	case errors.Is(err, ErrBusy):
		respond.Error(c, http.StatusConflict, "busy", err.Error(), nil)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
	case errors.Is(err, ErrPrecondition):
		respond.Error(c, http.StatusConflict, "precondition_failed", err.Error(), nil)
	case errors.Is(err, ErrNoResult):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ErrUnknownAsset):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.As(err, &importErr):
		respond.Error(c, http.StatusUnprocessableEntity, "import_failed", v.Error, v)
	case errors.As(err, &analysisErr):
		respond.Error(c, http.StatusBadGateway, "analysis_failed", v.Error, v)
	case errors.As(err, &tailoringErr):
		respond.Error(c, http.StatusBadGateway, "tailoring_failed", v.Error, v)
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs),
		errors.Is(err, editor.ErrInvalidSelection), errors.Is(err, editor.ErrUnknownFormat),
		errors.Is(err, outreach.ErrInvalidRecipient):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
