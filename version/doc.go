// Package version reports the build version of the workout service. The
// config falls back to it when no version is configured.
package version
