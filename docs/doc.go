// Package docs provides generated OpenAPI documentation.
//
// lompack API
//
//	@title			lompack API
//	@version		1.0
//	@description	Heritage record catalog API for managing records, media, LOM metadata, and SCORM exports.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/lompack/serve.go -o ./swagger --parseDependency --parseInternal
