package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/client"
	"github.com/courierdesk/courierdesk/modules/logistics/services"
	"github.com/courierdesk/courierdesk/pkg/application"
	"github.com/courierdesk/courierdesk/pkg/httpapi"
	"github.com/courierdesk/courierdesk/pkg/shared"
)

type ClientController struct {
	clients *services.ClientService
}

func NewClientController(app application.Application) *ClientController {
	return &ClientController{
		clients: app.Service(services.ClientService{}).(*services.ClientService),
	}
}

func (c *ClientController) Key() string {
	return "/api/v1/clients"
}

func (c *ClientController) Register(r *mux.Router) {
	router := r.PathPrefix(c.Key()).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *ClientController) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.ParseLimitOffset(r)
	clients, total, err := c.clients.GetPaginated(r.Context(), &client.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, shared.NewPage(clients, total))
}

func (c *ClientController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	view, err := c.clients.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, view)
}

func (c *ClientController) create(w http.ResponseWriter, r *http.Request) {
	var body client.CreateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "CLIENT_INVALID_BODY", "invalid request body", nil)
		return
	}
	view, err := c.clients.Create(r.Context(), &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, view)
}

func (c *ClientController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	var body client.UpdateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "CLIENT_INVALID_BODY", "invalid request body", nil)
		return
	}
	view, err := c.clients.Update(r.Context(), id, &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, view)
}

func (c *ClientController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	if err := c.clients.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
