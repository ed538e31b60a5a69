// Package layout contains the Layout/* rules.
package layout
