package types

import (
	"net"
	"strconv"
)

// Endpoint identifies a network address hosting a remote module server.
//
// Endpoints are compared by value; two endpoints with the same host and
// port are the same endpoint. Registration order of an endpoint list is
// significant: the load balancer breaks ties and degrades in favor of the
// first-registered endpoint.
type Endpoint struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the endpoint in "host:port" form, suitable for net.Dial
// and for use as a cache key.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// String returns the endpoint in "host:port" form.
func (e Endpoint) String() string {
	return e.Addr()
}
