// Package webexauth obtains and caches Webex OAuth2 access tokens for
// Webex OAuth enabled sites.
//
// The authorization code flow uses PKCE (S256) and sends the client
// secret in the token request body. Pending authorizations live in a
// FlowStore until the callback consumes them; issued tokens are cached per
// account in the user cache directory.
//
// The XML API carries the access token as webExAccessToken in the security
// context. BearerClient also sends it as an Authorization header, picking the
// account from the request context.
package webexauth
