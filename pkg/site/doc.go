// Package site serves the showcase over HTTP and exports it as static files.
//
// Routes:
//
//	GET  /                      home page with the capability grid
//	GET  /{id}                  capability detail (unknown ids redirect to /)
//	GET  /llms                  llms.txt reference page
//	GET  /llms.txt              llms.txt as text/plain
//	GET  /diagrams/{id}.svg     rendered diagram (422 with a diagnostic on failure)
//	GET  /diagrams/{id}         rendered diagram as an HTML fragment
//	POST /theme                 toggle the theme cookie and redirect back
//	GET  /healthz               liveness probe
//
// Diagram routes accept ?theme=light|dark. Otherwise the theme comes from
// the eve-showcase-theme cookie, then the server default.
//
// Every page view that shows a diagram owns one [diagram.Renderer] for the
// duration of the request: it is created when the handler starts, settled
// with the request context and closed when the handler returns, so a client
// that disconnects tears its renderer down.
package site
