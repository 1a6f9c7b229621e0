// Package cache stores rendered template output for the preview server.
//
// Redis is used when a server URL is configured; Memory otherwise. Keys
// come from Key, which hashes the template source together with the
// scope so that editing either invalidates the entry.
package cache
