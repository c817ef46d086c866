// Package secret resolves credentials referenced from gateway configuration,
// such as the remote store URL or per-provider API keys.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider)
//   - Resolving "secretref:<provider>:<ref>" references in config values
//
// References may stand alone or appear inline:
//   - Full value:  secretref:env:REDIS_URL
//   - Inline use:  redis://:secretref:env:REDIS_PASSWORD@localhost:6379/0
package secret
