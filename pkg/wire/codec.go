package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/golang/snappy"
)

// Magic opens every wire file.
const Magic = "TXGW"

// Version is the container version written by Encode.
const Version uint8 = 1

// Compression selects how the payload is stored.
type Compression uint8

const (
	Uncompressed Compression = 0
	Snappy       Compression = 1
)

// Checksum selects how the stored payload is verified.
type Checksum uint8

const (
	NoChecksum Checksum = 0
	CRC32      Checksum = 1
)

// Format packs compression into the top three bits and checksum into the next two.
type Format uint8

// NewFormat combines a compression and a checksum method.
func NewFormat(c Compression, s Checksum) Format {
	return Format((uint8(c)&0x07)<<5 | (uint8(s)&0x03)<<3)
}

// Split returns the compression and checksum methods.
func (f Format) Split() (Compression, Checksum) {
	return Compression(uint8(f) >> 5), Checksum((uint8(f) >> 3) & 0x03)
}

func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "none"
	case Snappy:
		return "snappy"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// Header is the fixed container prefix.
type Header struct {
	Version uint8
	Format  Format
	// Stored is the size of the payload as written, after compression.
	Stored int
}

// Encode writes doc as a framed container.
func Encode(w io.Writer, doc *Document, format Format) error {
	payload, err := marshalPayload(doc)
	if err != nil {
		return err
	}
	compress, checksum := format.Split()

	var stored []byte
	switch compress {
	case Uncompressed:
		stored = payload
	case Snappy:
		stored = snappy.Encode(nil, payload)
	default:
		return fmt.Errorf("compression %d: %w", compress, ErrUnknownFormat)
	}

	var head bytes.Buffer
	head.WriteString(Magic)
	head.WriteByte(Version)
	head.WriteByte(byte(format))
	switch checksum {
	case NoChecksum:
	case CRC32:
		_ = binary.Write(&head, binary.LittleEndian, crc32.ChecksumIEEE(stored))
	default:
		return fmt.Errorf("checksum %d: %w", checksum, ErrUnknownFormat)
	}
	_ = binary.Write(&head, binary.LittleEndian, uint32(len(stored)))

	if _, err := w.Write(head.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(stored)
	return err
}

// Decode reads a framed container written by Encode.
func Decode(r io.Reader) (*Document, Header, error) {
	payload, h, err := readFrame(r)
	if err != nil {
		return nil, h, err
	}
	doc, err := unmarshalPayload(payload)
	return doc, h, err
}

func readFrame(r io.Reader) ([]byte, Header, error) {
	var h Header
	prefix := make([]byte, len(Magic)+2)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, h, fmt.Errorf("header: %w", truncated(err))
	}
	if string(prefix[:len(Magic)]) != Magic {
		return nil, h, ErrBadMagic
	}
	h.Version = prefix[len(Magic)]
	h.Format = Format(prefix[len(Magic)+1])
	if h.Version != Version {
		return nil, h, fmt.Errorf("version %d: %w", h.Version, ErrUnsupportedVersion)
	}
	compress, checksum := h.Format.Split()

	var crc uint32
	switch checksum {
	case NoChecksum:
	case CRC32:
		if err := binary.Read(r, binary.LittleEndian, &crc); err != nil {
			return nil, h, fmt.Errorf("checksum: %w", truncated(err))
		}
	default:
		return nil, h, fmt.Errorf("checksum %d: %w", checksum, ErrUnknownFormat)
	}
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, h, fmt.Errorf("size: %w", truncated(err))
	}
	stored, err := io.ReadAll(io.LimitReader(r, int64(size)))
	if err != nil {
		return nil, h, err
	}
	if len(stored) != int(size) {
		return nil, h, fmt.Errorf("payload %d of %d bytes: %w", len(stored), size, ErrTruncated)
	}
	h.Stored = len(stored)

	if checksum == CRC32 {
		if got := crc32.ChecksumIEEE(stored); got != crc {
			return nil, h, fmt.Errorf("stored %08x, computed %08x: %w", crc, got, ErrChecksum)
		}
	}

	switch compress {
	case Uncompressed:
		return stored, h, nil
	case Snappy:
		payload, err := snappy.Decode(nil, stored)
		if err != nil {
			return nil, h, fmt.Errorf("snappy: %w", err)
		}
		return payload, h, nil
	}
	return nil, h, fmt.Errorf("compression %d: %w", compress, ErrUnknownFormat)
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}

func marshalPayload(doc *Document) ([]byte, error) {
	m := doc.Manifest
	var b []byte
	if m.Directed {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	b = appendSpecs(b, m.VertexProperties)
	b = appendSpecs(b, m.EdgeProperties)

	b = binary.AppendUvarint(b, uint64(len(doc.Vertices)))
	for i, v := range doc.Vertices {
		if len(v.Props) != len(m.VertexProperties) {
			return nil, fmt.Errorf("vertex %d has %d values for %d properties: %w",
				i, len(v.Props), len(m.VertexProperties), ErrRecordShape)
		}
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.X))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.Y))
		b = binary.LittleEndian.AppendUint32(b, v.ID)
		for _, p := range v.Props {
			b = binary.LittleEndian.AppendUint32(b, uint32(p))
		}
	}

	b = binary.AppendUvarint(b, uint64(len(doc.Edges)))
	for i, e := range doc.Edges {
		if len(e.Props) != len(m.EdgeProperties) {
			return nil, fmt.Errorf("edge %d has %d values for %d properties: %w",
				i, len(e.Props), len(m.EdgeProperties), ErrRecordShape)
		}
		b = binary.LittleEndian.AppendUint32(b, e.U)
		b = binary.LittleEndian.AppendUint32(b, e.V)
		for _, p := range e.Props {
			b = binary.LittleEndian.AppendUint32(b, uint32(p))
		}
	}
	return b, nil
}

func appendSpecs(b []byte, specs []PropertySpec) []byte {
	b = binary.AppendUvarint(b, uint64(len(specs)))
	for _, s := range specs {
		b = binary.AppendUvarint(b, uint64(len(s.Name)))
		b = append(b, s.Name...)
		b = append(b, byte(s.Type))
	}
	return b
}

// reader walks a payload, remembering the first error.
type reader struct {
	buf []byte
	err error
}

func (r *reader) fail(what string) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: %w", what, ErrTruncated)
	}
}

func (r *reader) readByte(what string) byte {
	if r.err != nil || len(r.buf) < 1 {
		r.fail(what)
		return 0
	}
	c := r.buf[0]
	r.buf = r.buf[1:]
	return c
}

func (r *reader) uvarint(what string) uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.fail(what)
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *reader) word() uint32 {
	v := binary.LittleEndian.Uint32(r.buf)
	r.buf = r.buf[4:]
	return v
}

// count reads an element count and checks that count records of size bytes remain.
func (r *reader) count(what string, size int) int {
	n := r.uvarint(what)
	if r.err != nil {
		return 0
	}
	if size > 0 && n > uint64(len(r.buf)/size) {
		r.fail(what)
		return 0
	}
	return int(n)
}

func (r *reader) specs(what string) []PropertySpec {
	n := r.count(what, 2)
	out := make([]PropertySpec, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		l := r.count(what+" name", 1)
		if r.err != nil {
			break
		}
		name := string(r.buf[:l])
		r.buf = r.buf[l:]
		t := graph.PropertyType(r.readByte(what + " type"))
		if r.err == nil && !t.Valid() {
			r.err = fmt.Errorf("%s %q: %w", what, name, graph.ErrUnknownPropertyType)
		}
		out = append(out, PropertySpec{Name: name, Type: t})
	}
	return out
}

func unmarshalPayload(b []byte) (*Document, error) {
	r := &reader{buf: b}
	doc := &Document{}
	doc.Manifest.Directed = r.readByte("directed flag") == 1
	doc.Manifest.VertexProperties = r.specs("vertex properties")
	doc.Manifest.EdgeProperties = r.specs("edge properties")
	if r.err != nil {
		return nil, r.err
	}

	nv := r.count("vertices", doc.Manifest.VertexRecordSize())
	if r.err != nil {
		return nil, r.err
	}
	doc.Vertices = make([]VertexEntry, nv)
	for i := range doc.Vertices {
		v := &doc.Vertices[i]
		v.X = math.Float32frombits(r.word())
		v.Y = math.Float32frombits(r.word())
		v.ID = r.word()
		v.Props = make([]int32, len(doc.Manifest.VertexProperties))
		for j := range v.Props {
			v.Props[j] = int32(r.word())
		}
	}

	ne := r.count("edges", doc.Manifest.EdgeRecordSize())
	if r.err != nil {
		return nil, r.err
	}
	doc.Edges = make([]EdgeEntry, ne)
	for i := range doc.Edges {
		e := &doc.Edges[i]
		e.U = r.word()
		e.V = r.word()
		e.Props = make([]int32, len(doc.Manifest.EdgeProperties))
		for j := range e.Props {
			e.Props[j] = int32(r.word())
		}
	}
	if len(r.buf) != 0 {
		return nil, fmt.Errorf("%d trailing bytes: %w", len(r.buf), ErrRecordShape)
	}
	return doc, nil
}
