// Package server serves a live preview of templates.
//
// Routes:
//
//	GET    /healthz          liveness probe
//	GET    /render/{name}    render <templates>/<name>.rsx with the query as scope
//	POST   /render           render {"template": name, "scope": {...}}
//	GET    /ws               WebSocket; each message is a render request
//	DELETE /cache            drop cached output
//	GET    /metrics          Prometheus metrics, when enabled
//
// Templates are recompiled when their file changes. Rendered output is
// cached by template source and scope.
package server
