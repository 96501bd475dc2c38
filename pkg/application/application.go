package application

import (
	"fmt"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/courierdesk/courierdesk/pkg/eventbus"
)

// Controller registers a set of routes under its own prefix.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module wires one bounded context (repositories, services, controllers)
// into the application at startup.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	Pool() *pgxpool.Pool
	EventBus() eventbus.EventBus
	Logger() *logrus.Logger
	RegisterServices(services ...any)
	Service(service any) any
	RegisterControllers(controllers ...Controller)
	Controllers() []Controller
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:     opts.Pool,
		eventBus: opts.EventBus,
		logger:   opts.Logger,
		services: map[reflect.Type]any{},
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	services    map[reflect.Type]any
	controllers []Controller
}

func (a *application) Pool() *pgxpool.Pool        { return a.pool }
func (a *application) EventBus() eventbus.EventBus { return a.eventBus }
func (a *application) Logger() *logrus.Logger      { return a.logger }

func (a *application) RegisterServices(services ...any) {
	for _, service := range services {
		a.services[reflect.TypeOf(service).Elem()] = service
	}
}

// Service returns the registered service matching the type of the given
// zero value, e.g. app.Service(services.TaskService{}).(*services.TaskService).
func (a *application) Service(service any) any {
	svc, ok := a.services[reflect.TypeOf(service)]
	if !ok {
		panic(fmt.Sprintf("service %T is not registered", service))
	}
	return svc
}

func (a *application) RegisterControllers(controllers ...Controller) {
	a.controllers = append(a.controllers, controllers...)
}

func (a *application) Controllers() []Controller {
	return a.controllers
}
