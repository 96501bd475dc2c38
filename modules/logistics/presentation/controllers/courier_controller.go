package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/aggregates/courier"
	"github.com/courierdesk/courierdesk/modules/logistics/services"
	"github.com/courierdesk/courierdesk/pkg/application"
	"github.com/courierdesk/courierdesk/pkg/httpapi"
	"github.com/courierdesk/courierdesk/pkg/shared"
)

type CourierController struct {
	couriers *services.CourierService
}

func NewCourierController(app application.Application) *CourierController {
	return &CourierController{
		couriers: app.Service(services.CourierService{}).(*services.CourierService),
	}
}

func (c *CourierController) Key() string {
	return "/api/v1/couriers"
}

func (c *CourierController) Register(r *mux.Router) {
	router := r.PathPrefix(c.Key()).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *CourierController) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.ParseLimitOffset(r)
	couriers, total, err := c.couriers.GetPaginated(r.Context(), &courier.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, shared.NewPage(couriers, total))
}

func (c *CourierController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	entity, err := c.couriers.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, entity)
}

func (c *CourierController) create(w http.ResponseWriter, r *http.Request) {
	var body courier.CreateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "COURIER_INVALID_BODY", "invalid request body", nil)
		return
	}
	created, err := c.couriers.Create(r.Context(), &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, created)
}

func (c *CourierController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	var body courier.UpdateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "COURIER_INVALID_BODY", "invalid request body", nil)
		return
	}
	updated, err := c.couriers.Update(r.Context(), id, &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (c *CourierController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	if err := c.couriers.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
