package endpoints

import (
	"github.com/lompack/lompack/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	SwaggerSpecPath string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Record endpoints
		&CreateRecordEndpoint{},
		&ListRecordsEndpoint{},
		&GetRecordEndpoint{},
		&UpdateRecordEndpoint{},
		&DeleteRecordEndpoint{},

		// Media endpoints
		&AttachMediaEndpoint{},
		&ListMediaEndpoint{},
		&DeleteMediaEndpoint{},

		// LOM metadata endpoints
		&GetLOMEndpoint{},
		&SetLOMEndpoint{},

		// Export endpoints
		&ExportSCORMEndpoint{},

		// Assist endpoints
		&AssistEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
		&SwaggerUIEndpoint{},
	}
}
