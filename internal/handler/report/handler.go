package report

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	reportService "github.com/anesteasy/api/internal/service/report"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/httputil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service interface {
	Generate(ctx context.Context, ownerID uuid.UUID, start, end *time.Time) *model.ProcedureReport
	ExportXLSX(r *model.ProcedureReport) ([]byte, error)
}

type Handler struct {
	svc Service
	loc *time.Location
}

func NewHandler(svc Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/procedures", h.Procedures)
		reports.GET("/procedures/export", h.Export)
	}
}

// report reads the optional start and end dates (YYYY-MM-DD) and builds the
// caller's report. ok is false when a response was already written.
func (h *Handler) report(c *gin.Context) (*model.ProcedureReport, bool) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return nil, false
	}
	start, ok := handler.QueryDate(c, "start", h.loc)
	if !ok {
		return nil, false
	}
	end, ok := handler.QueryDate(c, "end", h.loc)
	if !ok {
		return nil, false
	}
	if start != nil && end != nil && end.Before(*start) {
		httputil.RespondWithError(c, apperrors.Validation("end must not be before start"))
		return nil, false
	}
	return h.svc.Generate(c.Request.Context(), p.ID, start, end), true
}

func (h *Handler) Procedures(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, r)
}

func (h *Handler) Export(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}

	data, err := h.svc.ExportXLSX(r)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reportService.Filename(r)))
	c.Data(http.StatusOK, xlsxContentType, data)
}
