// Package apiconnect wires the api messages into Connect handlers and clients,
// one set per service.
package apiconnect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/pkg/api"
)

// PackageName prefixes every service name.
const PackageName = "treatplanner.v1"

func procedure(service, method string) string {
	return "/" + PackageName + "." + service + "/" + method
}

// handlerOptions puts the JSON codec ahead of the caller's options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}

// route returns the service path prefix and a handler dispatching on the full
// procedure path.
func route(service string, handlers map[string]http.Handler) (string, http.Handler) {
	return "/" + PackageName + "." + service + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
