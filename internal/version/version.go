// Package version holds the gateway release version.
package version

// Version is the gateway release version reported by the health endpoints.
const Version = "1.0.0"
