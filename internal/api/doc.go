// Package api handles incoming HTTP requests, routing, form validation,
// and response rendering. It acts as an adapter between the htmx front end
// and the deck service, translating HTTP concerns to deck and card
// operations and service errors to status codes.
package api
