package provider

import "errors"

var ErrMethodNotSupported = errors.New("payment method is not supported")

// Registry routes a contribution to the client for its payment method. One
// registry instance serves all requests for the life of the process.
type Registry struct {
	clients map[string]Client
}

func NewRegistry(clients ...Client) *Registry {
	items := make(map[string]Client, len(clients))
	for _, c := range clients {
		items[c.Method()] = c
	}
	return &Registry{clients: items}
}

func (r *Registry) Get(method string) (Client, error) {
	client, ok := r.clients[method]
	if !ok {
		return nil, ErrMethodNotSupported
	}
	return client, nil
}
