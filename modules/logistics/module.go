package logistics

import (
	gerrors "github.com/go-faster/errors"

	"github.com/courierdesk/courierdesk/modules/logistics/infrastructure/persistence"
	"github.com/courierdesk/courierdesk/modules/logistics/presentation/controllers"
	"github.com/courierdesk/courierdesk/modules/logistics/services"
	"github.com/courierdesk/courierdesk/pkg/application"
	"github.com/courierdesk/courierdesk/pkg/configuration"
	"github.com/courierdesk/courierdesk/pkg/storage"
)

// Module wires the delivery domain: clients, providers, couriers, tasks and
// their photos and status history.
type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "logistics"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	store, err := storage.NewLocal(conf.Uploads.Dir, conf.Uploads.BaseURL)
	if err != nil {
		return gerrors.Wrap(err, "failed to initialize photo storage")
	}

	addressRepo := persistence.NewAddressRepository()
	clientRepo := persistence.NewClientRepository()
	providerRepo := persistence.NewProviderRepository()
	courierRepo := persistence.NewCourierRepository()
	taskRepo := persistence.NewTaskRepository()
	photoRepo := persistence.NewTaskPhotoRepository()
	historyRepo := persistence.NewTaskHistoryRepository()

	app.RegisterServices(
		services.NewClientService(clientRepo, addressRepo, app.EventBus()),
		services.NewProviderService(providerRepo, addressRepo, app.EventBus()),
		services.NewCourierService(courierRepo, app.EventBus()),
		services.NewTaskService(taskRepo, historyRepo, addressRepo, clientRepo, providerRepo, courierRepo, app.EventBus()),
		services.NewTaskPhotoService(photoRepo, taskRepo, store, app.EventBus()),
		services.NewTaskHistoryService(historyRepo, taskRepo),
	)
	app.RegisterControllers(
		controllers.NewClientController(app),
		controllers.NewProviderController(app),
		controllers.NewCourierController(app),
		controllers.NewTaskController(app),
	)
	return nil
}
