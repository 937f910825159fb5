// Package config resolves the Webex site, credentials and client settings.
//
// Values are layered, lowest first: built-in defaults, a .env file, an
// optional YAML settings file, process environment variables, and finally
// command-line flags applied by the caller.
package config
