// Package logging constructs the zap.Logger the rest of the server is
// given at startup, so main is the only place that decides between a
// production or development encoder.
package logging

import "go.uber.org/zap"

// New builds a production JSON logger, or a development console logger
// with debug-level output and stack traces when dev is true.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
