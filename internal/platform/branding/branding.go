// Package branding holds user-facing product names.
package branding

// AppName is the product name shown to MCP clients and in logs.
const AppName = "WFRP Stress"
