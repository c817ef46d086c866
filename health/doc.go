// Package health tracks the health of the named external dependencies the
// gateway talks to.
//
// A Tracker runs probe functions per dependency, remembers the latest result
// (status, response time, last check, error), and aggregates everything into
// an overall status: at least 80% healthy dependencies report healthy, at
// least 50% degraded, anything less unhealthy. HTTP handlers expose the
// payloads for status reporting.
package health
