package common

// AccessTokenHeaderName is the HTTP header carrying the bearer access token.
const AccessTokenHeaderName = "Authorization"

// BearerPrefix precedes the token inside AccessTokenHeaderName.
const BearerPrefix = "Bearer "

// RefreshTokenCookieName is the httpOnly cookie set on login.
const RefreshTokenCookieName = "refreshToken"

// AccessTokenQueryParam carries the access token on websocket upgrades,
// where browsers cannot set headers.
const AccessTokenQueryParam = "token"
