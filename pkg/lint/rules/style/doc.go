// Package style contains the Style/* rules.
package style
