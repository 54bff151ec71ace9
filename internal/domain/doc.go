// Package domain contains the core business entities of the application:
// users and the grams they post. Entities validate themselves; persistence
// and delivery live elsewhere.
package domain
