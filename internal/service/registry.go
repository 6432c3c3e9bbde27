package service

// ClientFactory builds an upstream client bound to one API key.
type ClientFactory func(apiKey string) ProjectClient

// Registry caches one upstream client per API key, created on first use.
// Passes run on a single goroutine, so plain map access is enough; the only
// requirement is create-if-absent idempotence.
type Registry struct {
	factory ClientFactory
	clients map[string]ProjectClient
}

func NewRegistry(factory ClientFactory) *Registry {
	return &Registry{
		factory: factory,
		clients: make(map[string]ProjectClient),
	}
}

func (r *Registry) Get(apiKey string) ProjectClient {
	if client, ok := r.clients[apiKey]; ok {
		return client
	}
	client := r.factory(apiKey)
	r.clients[apiKey] = client
	return client
}
