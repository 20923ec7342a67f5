// Package api defines the request and response messages of the splitledger
// RPC services. Messages are plain structs carried as JSON by JSONCodec;
// package apiconnect wires them to Connect handlers and clients.
//
// Money fields are float64 in currency units. Fields named Display* carry
// the same value formatted for people ("$12.50") and are ignored on input.
package api
