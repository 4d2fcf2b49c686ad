package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vertexcore-storefront/models"
	"vertexcore-storefront/services/commerce"
	"vertexcore-storefront/utils"
)

// CatalogSource is the read-only slice of the commerce client the catalog
// pages consume.
type CatalogSource interface {
	Catalog(ctx context.Context) (*models.CatalogResponse, error)
	FindPackage(ctx context.Context, id int) (*models.Package, error)
}

type CatalogHandler struct {
	source CatalogSource
}

func NewCatalogHandler(source CatalogSource) *CatalogHandler {
	return &CatalogHandler{source: source}
}

func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.source.Catalog(r.Context())
	if err != nil {
		log.Printf("Error loading catalog: %v", err)
		utils.SendErrorResponse(w, remoteErrorStatus(err), "Failed to load store catalog")
		return
	}

	utils.SendJSON(w, http.StatusOK, catalog)
}

func (h *CatalogHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid package id")
		return
	}

	pkg, err := h.source.FindPackage(r.Context(), id)
	if err != nil {
		log.Printf("Error looking up package %d: %v", id, err)
		utils.SendErrorResponse(w, remoteErrorStatus(err), "Failed to load package")
		return
	}
	if pkg == nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Package not found")
		return
	}

	utils.SendJSON(w, http.StatusOK, pkg)
}

// remoteErrorStatus maps commerce API failures to a gateway status so
// callers can tell provider trouble from our own.
func remoteErrorStatus(err error) int {
	var reqErr *commerce.RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
