// Package metrics exposes Prometheus collectors for template compilation,
// rendering, the preview server's cache and live connections, and
// publishing.
//
// Metrics collected (with the default "rsx" namespace):
//   - rsx_compiles_total: compilations by status
//   - rsx_compile_duration_seconds: compilation duration
//   - rsx_diagnostics_total: compile diagnostics by code
//   - rsx_renders_total: renders by template and status
//   - rsx_render_duration_seconds: render duration by template
//   - rsx_cache_lookups_total: cache lookups by result
//   - rsx_live_connections: open WebSocket connections
//   - rsx_publish_total: uploads by status
//
// Example:
//
//	m := metrics.New(metrics.WithRegistry(reg))
//	tpl, err := rsx.Compile("page", src, rsx.WithMetrics(m))
//
//	http.Handle("/metrics", promhttp.Handler())
package metrics
