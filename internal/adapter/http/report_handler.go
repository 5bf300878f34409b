package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domain "immofin-backend/internal/domain/dossier"
	uc "immofin-backend/internal/usecase/dossier"
)

// ReportHandler drives the engines and the report lifecycle on the
// active dossier.
type ReportHandler struct{ uc *uc.Usecase }

func NewReportHandler(u *uc.Usecase) *ReportHandler { return &ReportHandler{uc: u} }

func noDossier(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNoDossier) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "no active dossier, select one first"})
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

func (h *ReportHandler) ComputeRentabilite(c echo.Context) error {
	set, err := h.uc.ComputeRentabilite(c.Request().Context())
	if err != nil {
		return noDossier(c, err)
	}
	return c.JSON(http.StatusOK, set)
}

func (h *ReportHandler) GenerateScore(c echo.Context) error {
	res, err := h.uc.GenerateScore(c.Request().Context())
	if err != nil {
		return noDossier(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) GuaranteeCoverage(c echo.Context) error {
	sum, err := h.uc.GuaranteeCoverage(c.Request().Context())
	if err != nil {
		return noDossier(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *ReportHandler) Generate(c echo.Context) error {
	rep, err := h.uc.GenerateReport(c.Request().Context())
	if err != nil {
		return noDossier(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// Export streams the persisted report through the document exporter.
func (h *ReportHandler) Export(c echo.Context) error {
	art, err := h.uc.ExportReport(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoDossier) {
			return noDossier(c, err)
		}
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+art.Filename+`"`)
	return c.Blob(http.StatusOK, art.ContentType, art.Content)
}
