// Package service wires MCP transports to the stress tool handlers.
//
// It knows how to run MCP over stdio or streamable HTTP and delegates tool
// and resource meaning to the domain package.
package service
