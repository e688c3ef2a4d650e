// Package client is the HTTP side of the tasksync client: a JSON API client
// that attaches the bearer access token, transparently refreshes it once on
// a 401, and maps error responses to sentinel errors.
//
// Sentinels: ErrUnavailable (transport failure), ErrUnauthorized,
// ErrNotLoggedIn, plus common.ErrorValidation / ErrorForbidden /
// ErrorNotFound through APIError.
package client
