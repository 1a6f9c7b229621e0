// Package watch polls template directories for changes.
//
// It compares modification times between scans instead of using OS
// notifications, so it behaves the same on every platform and on network
// file systems:
//
//	w := watch.New(watch.Config{Paths: []string{"templates"}, Ext: ".rsx"})
//	err := w.Run(ctx, func(changed []string) {
//	    regenerate(changed)
//	})
package watch
