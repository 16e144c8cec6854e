// Package xdr provides generic XDR (External Data Representation) encoding
// and decoding utilities per RFC 4506.
//
// XDR is the standard data serialization format used by Sun RPC protocols
// including PORTMAP, MOUNT and NFS. This package provides protocol-agnostic
// utilities shared by the portmap, mount and nfs3 client packages.
//
// Key characteristics of XDR:
//   - Big-endian byte order for all multi-byte integers
//   - 4-byte alignment for all data types
//   - Variable-length data is preceded by a 4-byte length
//   - Strings and opaque data are padded to 4-byte boundaries
//
// This package has no dependency on any protocol-specific type.
//
// Reference: RFC 4506 - XDR: External Data Representation Standard
// https://tools.ietf.org/html/rfc4506
package xdr
