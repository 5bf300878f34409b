package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domain "immofin-backend/internal/domain/dossier"
	uc "immofin-backend/internal/usecase/dossier"
)

// ModuleHandler exposes the guarded module patches. Each body names
// its target dossier; a mismatch with the active dossier is a no-op on
// the store side, so these endpoints always answer with the (possibly
// unchanged) snapshot.
type ModuleHandler struct{ uc *uc.Usecase }

func NewModuleHandler(u *uc.Usecase) *ModuleHandler { return &ModuleHandler{uc: u} }

func (h *ModuleHandler) patch(c echo.Context, p domain.ModulePatch) error {
	if !reHex32.MatchString(p.TargetDossier()) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "dossier_id", Message: "must be 32-char lowercase hex"}},
		})
	}
	snap := h.uc.PatchModule(c.Request().Context(), p)
	return c.JSON(http.StatusOK, snap)
}

func (h *ModuleHandler) PatchRisks(c echo.Context) error {
	var p domain.RiskAnalysisPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.patch(c, p)
}

func (h *ModuleHandler) PatchGuarantees(c echo.Context) error {
	var p domain.GuaranteesPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.patch(c, p)
}

func (h *ModuleHandler) PatchDocuments(c echo.Context) error {
	var p domain.DocumentsPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.patch(c, p)
}

func (h *ModuleHandler) PatchCommittee(c echo.Context) error {
	var p domain.CommitteePatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.patch(c, p)
}

func (h *ModuleHandler) PatchMonitoring(c echo.Context) error {
	var p domain.MonitoringPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.patch(c, p)
}

func (h *ModuleHandler) PatchMarket(c echo.Context) error {
	var p domain.MarketPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.patch(c, p)
}
