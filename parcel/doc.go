// Package parcel implements the flat binary container that autofill values are
// written into when they cross a process or storage boundary.
//
// A parcel is a sequence of 4-byte aligned little-endian words. The writer
// offers a handful of primitives and the reader mirrors them one for one; there
// is no framing or self-description beyond what the caller writes, so the
// reader must consume fields in the exact order the writer produced them.
//
// # Layout
//
//	int32     4 bytes, little-endian
//	int64     8 bytes, little-endian
//	bool      int32 0 or 1
//	string    int32 byte length (-1 for null), UTF-8 bytes, zero padding to 4
//	sequence  int32 element count (-1 for null), then per element an int32
//	          presence marker (0 null, 1 present) followed by the element
//	parcelable nullable string type tag, then the element payload
//
// # Untrusted input
//
// Readers are expected to be fed bytes from outside the process. Every read is
// bounds checked, lengths other than the -1 null marker must be non-negative,
// element counts are capped by the bytes that remain, and strings must be valid
// UTF-8. Any violation returns an error wrapping ErrMalformed; the reader never
// panics and never allocates more than the input can describe.
package parcel
