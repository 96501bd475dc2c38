package core

import (
	"github.com/courierdesk/courierdesk/modules/core/infrastructure/persistence"
	"github.com/courierdesk/courierdesk/modules/core/presentation/controllers"
	"github.com/courierdesk/courierdesk/modules/core/services"
	"github.com/courierdesk/courierdesk/pkg/application"
)

// Module wires tenant and identity management: organizations, users and
// authentication.
type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	orgRepo := persistence.NewOrganizationRepository()
	userRepo := persistence.NewUserRepository()

	app.RegisterServices(
		services.NewOrganizationService(orgRepo, app.EventBus()),
		services.NewUserService(userRepo, app.EventBus()),
		services.NewAuthService(userRepo, orgRepo),
	)
	app.RegisterControllers(
		controllers.NewAuthController(app),
		controllers.NewOrganizationController(app),
		controllers.NewUserController(app),
	)
	return nil
}
