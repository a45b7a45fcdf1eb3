// Package field splits a raw header block into header fields and provides
// the RFC 2047 encoded-word codec used to carry non-ASCII text in header
// field bodies.
package field
