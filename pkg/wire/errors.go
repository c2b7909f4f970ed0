package wire

import "errors"

// Container errors.
var (
	ErrBadMagic           = errors.New("not a texgraph wire file")
	ErrUnsupportedVersion = errors.New("unsupported wire version")
	ErrChecksum           = errors.New("checksum mismatch")
	ErrTruncated          = errors.New("truncated wire data")
	ErrUnknownFormat      = errors.New("unknown compression or checksum")
)

// Import errors. An import failing with any of these leaves the graph untouched.
var (
	ErrDirectedMismatch  = errors.New("directed/undirected mismatch")
	ErrPropertyConflict  = errors.New("property declared with a different type")
	ErrDanglingReference = errors.New("reference to an entity not in the document")
	ErrDuplicateID       = errors.New("duplicate vertex id")
	ErrRecordShape       = errors.New("record does not match manifest")
)
