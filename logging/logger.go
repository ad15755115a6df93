package logging

import "go.uber.org/zap"

// Named returns the global sugared logger tagged with a component name
func Named(component string) *zap.SugaredLogger {
	return zap.S().Named(component)
}
