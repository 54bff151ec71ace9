// Package api implements the HTTP controllers for grams and accounts.
//
// Handlers decode nested JSON parameters ({"gram": {...}}),
// call into the service layer and render JSON documents. Successful writes
// answer with 302 redirects, invalid submissions with 422 and the submitted
// values, and missing records with 404. Errors are translated by
// MapErrorToStatusCode and GetSafeErrorMessage so internal details never
// reach clients.
package api
