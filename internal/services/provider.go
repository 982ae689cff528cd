package services

import (
	"context"
)

// Provider is a dependency whose availability gates readiness
type Provider interface {
	// Type returns the service type name
	Type() string

	// HealthCheck checks if the service is available
	HealthCheck(ctx context.Context) error
}

// Pinger is satisfied by stores and caches
type Pinger interface {
	Ping(ctx context.Context) error
}

// BaseProvider provides common functionality for providers
type BaseProvider struct {
	serviceType string
}

// Type returns the service type
func (p *BaseProvider) Type() string {
	return p.serviceType
}

// PingProvider reports the health of anything that can be pinged
type PingProvider struct {
	BaseProvider
	target Pinger
}

// NewPingProvider wraps target as a provider of the given type
func NewPingProvider(serviceType string, target Pinger) *PingProvider {
	return &PingProvider{
		BaseProvider: BaseProvider{serviceType: serviceType},
		target:       target,
	}
}

// HealthCheck pings the wrapped target
func (p *PingProvider) HealthCheck(ctx context.Context) error {
	return p.target.Ping(ctx)
}
