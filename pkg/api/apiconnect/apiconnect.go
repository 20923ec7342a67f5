// Package apiconnect binds the splitledger services to Connect handlers and
// clients. Every handler and client speaks api.JSONCodec.
package apiconnect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// withJSON puts the JSON codec ahead of caller options.
func withJSON[T any](opts []T, codec T) []T {
	return append([]T{codec}, opts...)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return withJSON(opts, connect.HandlerOption(connect.WithCodec(api.JSONCodec{})))
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return withJSON(opts, connect.ClientOption(connect.WithCodec(api.JSONCodec{})))
}

// route dispatches a service's requests to its procedure handlers.
func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
