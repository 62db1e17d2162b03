package interfaces

// Service is a network interface of the daemon. Start returns once the
// listener is bound; Stop drains in-flight requests before returning.
type Service interface {
	Start() error
	Stop()
}
