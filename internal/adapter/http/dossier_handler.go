package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domain "immofin-backend/internal/domain/dossier"
	uc "immofin-backend/internal/usecase/dossier"
)

type DossierHandler struct{ uc *uc.Usecase }

func NewDossierHandler(u *uc.Usecase) *DossierHandler { return &DossierHandler{uc: u} }

type createDossierReq struct {
	Label string `json:"label"`
}

func (h *DossierHandler) Create(c echo.Context) error {
	var req createDossierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	d := h.uc.Create(c.Request().Context(), req.Label)
	return c.JSON(http.StatusCreated, d)
}

// Get serves the active dossier. Without one the client must fall back
// to dossier selection, which is what the 409 hint conveys.
func (h *DossierHandler) Get(c echo.Context) error {
	d, err := h.uc.Get(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoDossier) {
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "no active dossier, select one first"})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DossierHandler) Snapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Snapshot(c.Request().Context()))
}

type saveDossierReq struct {
	DossierID string       `json:"dossier_id" validate:"required,hex32"`
	Patch     domain.Patch `json:"patch"`
}

// Save deep-merges a section patch. Saving one screen leaves sibling
// sections untouched.
func (h *DossierHandler) Save(c echo.Context) error {
	var req saveDossierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	d, err := h.uc.Save(c.Request().Context(), req.DossierID, req.Patch)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DossierHandler) Delete(c echo.Context) error {
	dossierID := c.Param("dossier_id")
	if !reHex32.MatchString(dossierID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid dossier_id"})
	}
	snap := h.uc.Remove(c.Request().Context(), dossierID)
	return c.JSON(http.StatusOK, snap)
}
