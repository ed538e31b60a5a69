// Package config holds the vocabulary shared by the configuration cascade:
// file names, well-known keys and the error taxonomy.
//
// The cascade itself lives in the sub-packages:
//   - discovery: loading files, walking upward, resolving inherit_from
//   - merge: combining documents root-most first
//   - materialize: turning a merged document into typed rule configuration
//   - compiled: directory-scoped, reference-counted compile results
//   - runtime: the start-directory cache used during a run
package config
