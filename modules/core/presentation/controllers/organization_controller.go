package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/courierdesk/courierdesk/modules/core/domain/entities/organization"
	"github.com/courierdesk/courierdesk/modules/core/services"
	"github.com/courierdesk/courierdesk/pkg/application"
	"github.com/courierdesk/courierdesk/pkg/httpapi"
	"github.com/courierdesk/courierdesk/pkg/shared"
)

type OrganizationController struct {
	organizations *services.OrganizationService
}

func NewOrganizationController(app application.Application) *OrganizationController {
	return &OrganizationController{
		organizations: app.Service(services.OrganizationService{}).(*services.OrganizationService),
	}
}

func (c *OrganizationController) Key() string {
	return "/api/v1/organizations"
}

func (c *OrganizationController) Register(r *mux.Router) {
	router := r.PathPrefix(c.Key()).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *OrganizationController) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.ParseLimitOffset(r)
	orgs, total, err := c.organizations.GetPaginated(r.Context(), &organization.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, shared.NewPage(toOrganizationResponses(orgs), total))
}

func (c *OrganizationController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	entity, err := c.organizations.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toOrganizationResponse(entity))
}

type organizationRequest struct {
	Name string `json:"name"`
}

func (c *OrganizationController) create(w http.ResponseWriter, r *http.Request) {
	var body organizationRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ORGANIZATION_INVALID_BODY", "invalid request body", nil)
		return
	}
	created, err := c.organizations.Create(r.Context(), body.Name)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toOrganizationResponse(created))
}

func (c *OrganizationController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	var body organizationRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ORGANIZATION_INVALID_BODY", "invalid request body", nil)
		return
	}
	updated, err := c.organizations.Rename(r.Context(), id, body.Name)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toOrganizationResponse(updated))
}

func (c *OrganizationController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	if err := c.organizations.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
