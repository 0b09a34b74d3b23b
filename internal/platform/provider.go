package platform

import "errors"

// Provider bundles the backends of one accessibility layer.
type Provider struct {
	Reader          Reader
	WindowManager   WindowManager
	WindowMover     WindowMover
	AttributeWriter AttributeWriter
}

// ErrNoProvider is returned when no backend has been registered.
var ErrNoProvider = errors.New("no accessibility provider registered")

// NewProviderFunc is installed by a backend package; see
// internal/platform/fake.Register.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider from the registered backend.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrNoProvider
	}
	return NewProviderFunc()
}
