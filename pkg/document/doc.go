// Package document provides the ordered configuration tree shared by the
// loader, the merger and the materializer.
//
// A Node is a Scalar, a Sequence or a Mapping. Mappings keep their keys in
// document order so that merged output is deterministic. Nodes are built
// from YAML with Parse and are allocated from an Arena whose lifetime is
// bound to one compile operation.
//
// Nodes are write-once: once a tree has been handed to another component it
// must not be mutated. Use Clone to derive a modified copy.
package document
