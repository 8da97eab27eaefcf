// Package client contains the terminal client's links to the outside world.
//
// # Overview
//
// The package provides:
//  1. The server API contract (see the Client interface): register/login/
//     logout, health ping, the ASR relay upload and the translation relay.
//  2. A JSON-over-HTTP implementation (see HTTPClient) that attaches the
//     bearer access token, refreshes it once on 401 and maps answers to
//     sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite store and applying embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotLoggedIn, plus
// common.ErrInvalidCredentials and common.ErrDuplicateUser. Other non-2xx
// answers are *APIError.
package client
