// Package web holds the browser-facing plumbing shared by every screen:
// cookie sessions with flash messages, CSRF protection for form posts,
// security headers and the read-only switch.
//
// Middleware order matters. CSRF runs before the session loader so the
// request replaced by gorilla/csrf still carries the session context.
package web
