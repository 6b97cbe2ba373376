// Package services holds the small amount of logic that sits behind the
// operational HTTP endpoints: health, readiness, liveness and version
// reporting. Request body handling lives in internal/requestbody.
package services
