// Package domain translates MCP tool calls into stress service operations.
//
// Handlers parse MCP inputs, call the stress service, and return structured
// outputs that carry both the numbers and the rendered chat lines.
package domain
