// Package clientip determines the address of the client behind an HTTP request.
//
// Proxy headers are only consulted when the service runs behind a trusted proxy; otherwise
// any client could spoof them and, for example, dodge the login rate limit.
package clientip
