// Package api is the HTTP client of the recipe backend.
//
// # Client
//
// [Client] wraps an [http.Client] with the backend base URL, an optional bearer token and an
// optional [rate.Limiter]. Every request carries an X-Request-ID header. Authenticated calls send
// the token set with [Client.SetToken] as "Authorization: Bearer <token>".
//
// Login uses the OAuth2 password grant against /token ([Client.Login]); all other endpoints are
// plain JSON over REST and are grouped by resource: recipes, reviews, meal plans, saved plans,
// catalogs and admin.
//
// # Error Handling
//
// Transport failures wrap [shared.ErrNetwork] and are shown to users as
// [shared.NetworkErrorMessage]. Non-2xx responses become an [*Error] carrying the status code and
// the backend's "detail" message (a plain string, or the first "msg" of a validation error list).
// An [*Error] matches [shared.ErrAPIRequest] for every status, [shared.ErrNotAuthenticated] for
// 401 and [shared.ErrForbidden] for 403 under [errors.Is]. [Message] turns any error into the text
// a view should display.
package api
