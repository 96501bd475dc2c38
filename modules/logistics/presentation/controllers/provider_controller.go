package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/provider"
	"github.com/courierdesk/courierdesk/modules/logistics/services"
	"github.com/courierdesk/courierdesk/pkg/application"
	"github.com/courierdesk/courierdesk/pkg/httpapi"
	"github.com/courierdesk/courierdesk/pkg/shared"
)

type ProviderController struct {
	providers *services.ProviderService
}

func NewProviderController(app application.Application) *ProviderController {
	return &ProviderController{
		providers: app.Service(services.ProviderService{}).(*services.ProviderService),
	}
}

func (c *ProviderController) Key() string {
	return "/api/v1/providers"
}

func (c *ProviderController) Register(r *mux.Router) {
	router := r.PathPrefix(c.Key()).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *ProviderController) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.ParseLimitOffset(r)
	providers, total, err := c.providers.GetPaginated(r.Context(), &provider.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, shared.NewPage(providers, total))
}

func (c *ProviderController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	view, err := c.providers.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, view)
}

func (c *ProviderController) create(w http.ResponseWriter, r *http.Request) {
	var body provider.CreateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PROVIDER_INVALID_BODY", "invalid request body", nil)
		return
	}
	view, err := c.providers.Create(r.Context(), &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, view)
}

func (c *ProviderController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	var body provider.UpdateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PROVIDER_INVALID_BODY", "invalid request body", nil)
		return
	}
	view, err := c.providers.Update(r.Context(), id, &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, view)
}

func (c *ProviderController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	if err := c.providers.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
