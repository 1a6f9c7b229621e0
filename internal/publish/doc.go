// Package publish uploads rendered pages to S3 or an S3-compatible store.
package publish
