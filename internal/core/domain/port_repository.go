package domain

import "context"

// PortRepository is the abstraction for any kind of database intended to
// persist Ports.
type PortRepository interface {
	// AddPort adds the provided port to the repository.
	AddPort(ctx context.Context, port *Port) error
	// GetPort returns the port with the given id, or ErrPortNotFound.
	GetPort(ctx context.Context, id string) (*Port, error)
	// GetPendingPorts returns up to limit pending ports, oldest first, so
	// that no record starves behind newer ones.
	GetPendingPorts(ctx context.Context, limit int) ([]Port, error)
	// UpdatePort loads the port with the given id, applies updateFn to it
	// and persists the result, all within one storage transaction.
	UpdatePort(
		ctx context.Context, id string,
		updateFn func(port *Port) (*Port, error),
	) error
	// ListPortsForUser returns the ports owned by the given user.
	ListPortsForUser(ctx context.Context, userID string, page Page) ([]Port, error)
}
