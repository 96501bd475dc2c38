package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/courierdesk/courierdesk/modules/core/domain/aggregates/user"
	"github.com/courierdesk/courierdesk/modules/core/services"
	"github.com/courierdesk/courierdesk/pkg/application"
	"github.com/courierdesk/courierdesk/pkg/httpapi"
	"github.com/courierdesk/courierdesk/pkg/shared"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(app application.Application) *UserController {
	return &UserController{
		users: app.Service(services.UserService{}).(*services.UserService),
	}
}

func (c *UserController) Key() string {
	return "/api/v1/users"
}

func (c *UserController) Register(r *mux.Router) {
	router := r.PathPrefix(c.Key()).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *UserController) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.ParseLimitOffset(r)
	users, total, err := c.users.GetPaginated(r.Context(), &user.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, shared.NewPage(toUserResponses(users), total))
}

func (c *UserController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	entity, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toUserResponse(entity))
}

func (c *UserController) create(w http.ResponseWriter, r *http.Request) {
	var body user.CreateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "USER_INVALID_BODY", "invalid request body", nil)
		return
	}
	created, err := c.users.Create(r.Context(), &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toUserResponse(created))
}

func (c *UserController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	var body user.UpdateDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "USER_INVALID_BODY", "invalid request body", nil)
		return
	}
	updated, err := c.users.Update(r.Context(), id, &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

func (c *UserController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}
	if err := c.users.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
