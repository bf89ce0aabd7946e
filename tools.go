//go:build tools

package tools

// Build-time tool dependencies, kept in go.mod via this file.
import (
	_ "github.com/swaggo/swag/cmd/swag"
)
