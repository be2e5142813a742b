// Package mockapi is the development backend the dashboard talks to. It
// serves seeded companies, jobs, applications, notifications and tickets
// from SQLite and issues short-lived JWT access tokens with longer-lived
// refresh tokens.
package mockapi
