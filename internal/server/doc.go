// Package server is the HTTP front of the file portal. It wires the
// routes, the per-request session state and the HTML pages around the
// authenticator and the file repository, and provides lifecycle helpers
// used by tests and the production binary.
package server
