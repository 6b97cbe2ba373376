// Package http implements the HTTP handlers of the bodylab service.
//
// Handlers only deal with HTTP concerns: binding the request, calling the
// request body decoder and writing the response. Every failure is passed to
// the centralized errors.ErrorHandler, which answers with an RFC 7807
// problem document.
//
// # Request body variants
//
// The five /request-body-json-vN routes perform the same job, decoding a
// {"username","age"} object and logging it, each through a different
// binding style:
//
//	v1  raw stream read, "ok" written straight to the ResponseWriter
//	v2  body resolved to a string first, then decoded
//	v3  render.DecodeJSON into a render.Binder
//	v4  render.DecodeJSON into an Entity that also carries the request headers
//	v5  bound like v3, the record is rendered back as JSON
//
// v3 to v5 require Content-Type: application/json.
package http
