package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/courierdesk/courierdesk/modules/core/services"
	"github.com/courierdesk/courierdesk/pkg/application"
	"github.com/courierdesk/courierdesk/pkg/httpapi"
	"github.com/courierdesk/courierdesk/pkg/shared"
)

// AuthController serves the unauthenticated endpoints: login and tenant
// self-registration.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(app application.Application) *AuthController {
	return &AuthController{
		auth: app.Service(services.AuthService{}).(*services.AuthService),
	}
}

func (c *AuthController) Key() string {
	return "/api/v1/auth"
}

// Public exempts the auth routes from the bearer-token middleware.
func (c *AuthController) Public() bool {
	return true
}

func (c *AuthController) Register(r *mux.Router) {
	router := r.PathPrefix(c.Key()).Subrouter()
	router.HandleFunc("/login", c.login).Methods(http.MethodPost)
	router.HandleFunc("/register", c.register).Methods(http.MethodPost)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func (c *AuthController) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "AUTH_INVALID_BODY", "invalid request body", nil)
		return
	}
	token, entity, err := c.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(entity)})
}

func (c *AuthController) register(w http.ResponseWriter, r *http.Request) {
	var body services.RegisterDTO
	if err := shared.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "AUTH_INVALID_BODY", "invalid request body", nil)
		return
	}
	token, entity, err := c.auth.Register(r.Context(), &body)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(entity)})
}
