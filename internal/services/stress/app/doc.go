// Package app hosts the stress engine for persisted actors.
//
// The service owns what the engine leaves to its caller: loading and saving
// stress tracks, serializing resolutions per actor, remembering the delta each
// test applied so rerolls can replace it, and rendering notifications.
package app
