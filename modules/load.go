package modules

import (
	"github.com/courierdesk/courierdesk/modules/core"
	"github.com/courierdesk/courierdesk/modules/logistics"
	"github.com/courierdesk/courierdesk/pkg/application"
)

// BuiltInModules lists every bounded context in registration order; core
// must come first so identity services exist before anything depends on them.
func BuiltInModules() []application.Module {
	return []application.Module{
		core.NewModule(),
		logistics.NewModule(),
	}
}
