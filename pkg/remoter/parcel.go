package remoter

import (
	"bytes"
	"errors"
	"io"
	"math"

	"github.com/oy3o/codec"
)

// Writer encodes values into a transaction payload. The first error is kept
// and later writes are no-ops, so generated code checks once at the end.
type Writer struct {
	buf    bytes.Buffer
	enc    *codec.Writer
	broker CallbackBroker
	err    error
}

// NewWriter returns a writer that cannot export callbacks
func NewWriter() *Writer {
	return newWriter(nil)
}

// NewWriterFor returns a writer for a transaction on t. Callbacks are
// exported through t when it is also a CallbackBroker.
func NewWriterFor(t Transport) *Writer {
	broker, _ := t.(CallbackBroker)
	return newWriter(broker)
}

func newWriter(broker CallbackBroker) *Writer {
	w := &Writer{broker: broker}
	w.enc, _ = codec.NewWriter(&w.buf)
	return w
}

// Err returns the first error recorded by the writer
func (w *Writer) Err() error {
	if w.err != nil {
		return w.err
	}
	return w.enc.Err()
}

// Fail records err unless an error is already recorded
func (w *Writer) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Bytes returns the encoded payload
func (w *Writer) Bytes() ([]byte, error) {
	if err := w.enc.Flush(); err != nil {
		return nil, err
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

func (w *Writer) WriteBool(v bool)       { w.enc.WriteBool(v) }
func (w *Writer) WriteInt8(v int8)       { w.enc.WriteInt8(v) }
func (w *Writer) WriteInt16(v int16)     { w.enc.WriteInt16(v) }
func (w *Writer) WriteInt32(v int32)     { w.enc.WriteInt32(v) }
func (w *Writer) WriteInt64(v int64)     { w.enc.WriteInt64(v) }
func (w *Writer) WriteUint8(v uint8)     { w.enc.WriteUint8(v) }
func (w *Writer) WriteUint16(v uint16)   { w.enc.WriteUint16(v) }
func (w *Writer) WriteUint32(v uint32)   { w.enc.WriteUint32(v) }
func (w *Writer) WriteUint64(v uint64)   { w.enc.WriteUint64(v) }
func (w *Writer) WriteInt(v int)         { w.enc.WriteInt64(int64(v)) }
func (w *Writer) WriteUint(v uint)       { w.enc.WriteUint64(uint64(v)) }
func (w *Writer) WriteFloat32(v float32) { w.enc.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.enc.WriteUint64(math.Float64bits(v)) }

// WriteLen writes a collection, map or string length
func (w *Writer) WriteLen(n int) {
	if n > math.MaxInt32 {
		w.Fail(malformed("length %d exceeds the wire limit", n))
		return
	}
	w.enc.WriteInt32(int32(n))
}

// WriteNil writes the length marker of a nil collection or map
func (w *Writer) WriteNil() {
	w.enc.WriteInt32(-1)
}

// WritePresent writes the presence flag of a nullable value
func (w *Writer) WritePresent(present bool) {
	w.enc.WriteBool(present)
}

// WriteString writes a length-prefixed UTF-8 string
func (w *Writer) WriteString(s string) {
	w.WriteLen(len(s))
	if w.Err() == nil && s != "" {
		_, _ = w.enc.WriteString(s)
	}
}

// WriteBytes writes a length-prefixed byte slice; nil is kept distinct
// from empty
func (w *Writer) WriteBytes(b []byte) {
	if b == nil {
		w.WriteNil()
		return
	}
	w.WriteLen(len(b))
	w.enc.WriteBytes(b)
}

func (w *Writer) writeRaw(b []byte) {
	w.enc.WriteBytes(b)
}

// Export registers a callback dispatcher with the broker and writes its
// token. A nil dispatcher writes the empty token.
func (w *Writer) Export(d *Dispatcher) {
	if d == nil {
		w.WriteString("")
		return
	}
	if w.broker == nil {
		w.Fail(ErrNoBroker)
		return
	}
	token, err := w.broker.Export(d)
	if err != nil {
		w.Fail(err)
		return
	}
	w.WriteString(token)
}

// exportValue writes the token of a non-nil callback value. Brokers that
// track identity reuse the value's token; others export a new stub.
func (w *Writer) exportValue(v any, stub func() *Dispatcher) {
	registry, ok := w.broker.(CallbackRegistry)
	if !ok {
		w.Export(stub())
		return
	}
	token, err := registry.ExportValue(v, stub)
	if err != nil {
		w.Fail(err)
		return
	}
	w.WriteString(token)
}

// Reader decodes values from a transaction payload. Like Writer it keeps
// the first error; values read after an error are zero.
type Reader struct {
	src    *codec.BytesReader
	dec    *codec.Reader
	broker CallbackBroker
	err    error
}

// NewReader returns a reader over payload that cannot import callbacks
func NewReader(payload []byte) *Reader {
	return newReader(payload, nil)
}

func newReader(payload []byte, broker CallbackBroker) *Reader {
	src := codec.NewBytesReader(payload)
	dec, _ := codec.NewReader(src)
	return &Reader{src: src, dec: dec, broker: broker}
}

// Err returns the first decoding error. Codec errors are reported as
// ErrMalformedPayload.
func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}
	if err := r.dec.Err(); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return malformed("payload truncated")
		}
		return malformed("%v", err)
	}
	return nil
}

// Fail records err unless an error is already recorded
func (r *Reader) Fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Remaining returns the number of undecoded bytes
func (r *Reader) Remaining() int {
	return r.src.Available()
}

// Done reports the first decoding error, or ErrMalformedPayload when bytes
// are left over
func (r *Reader) Done() error {
	if err := r.Err(); err != nil {
		return err
	}
	if n := r.Remaining(); n > 0 {
		return malformed("%d trailing bytes", n)
	}
	return nil
}

func (r *Reader) ok() bool { return r.Err() == nil }

func (r *Reader) ReadBool() (v bool)     { r.dec.ReadBool(&v); return }
func (r *Reader) ReadInt8() (v int8)     { r.dec.ReadInt8(&v); return }
func (r *Reader) ReadInt16() (v int16)   { r.dec.ReadInt16(&v); return }
func (r *Reader) ReadInt32() (v int32)   { r.dec.ReadInt32(&v); return }
func (r *Reader) ReadInt64() (v int64)   { r.dec.ReadInt64(&v); return }
func (r *Reader) ReadUint8() (v uint8)   { r.dec.ReadUint8(&v); return }
func (r *Reader) ReadUint16() (v uint16) { r.dec.ReadUint16(&v); return }
func (r *Reader) ReadUint32() (v uint32) { r.dec.ReadUint32(&v); return }
func (r *Reader) ReadUint64() (v uint64) { r.dec.ReadUint64(&v); return }
func (r *Reader) ReadInt() int           { return int(r.ReadInt64()) }
func (r *Reader) ReadUint() uint         { return uint(r.ReadUint64()) }
func (r *Reader) ReadFloat32() float32   { return math.Float32frombits(r.ReadUint32()) }
func (r *Reader) ReadFloat64() float64   { return math.Float64frombits(r.ReadUint64()) }

// ReadLen reads a collection or map length. It returns -1 for nil and on
// error. A length larger than the remaining payload is malformed: every
// element occupies at least one byte.
func (r *Reader) ReadLen() int {
	n := int(r.ReadInt32())
	if !r.ok() {
		return -1
	}
	if n < -1 {
		r.Fail(malformed("negative length %d", n))
		return -1
	}
	if n > r.Remaining() {
		r.Fail(malformed("length %d exceeds remaining %d bytes", n, r.Remaining()))
		return -1
	}
	return n
}

// ExpectLen reads an array length and checks it equals n
func (r *Reader) ExpectLen(n int) bool {
	got := int(r.ReadInt32())
	if !r.ok() {
		return false
	}
	if got != n {
		r.Fail(malformed("array length %d, want %d", got, n))
		return false
	}
	return true
}

// ReadPresent reads the presence flag of a nullable value
func (r *Reader) ReadPresent() bool {
	return r.ReadBool() && r.ok()
}

// ReadString reads a length-prefixed string. A nil marker decodes as "".
func (r *Reader) ReadString() string {
	n := r.ReadLen()
	if n <= 0 {
		return ""
	}
	return string(r.dec.ReadBytes(n))
}

// ReadBytes reads a length-prefixed byte slice, keeping nil distinct from
// empty
func (r *Reader) ReadBytes() []byte {
	n := r.ReadLen()
	switch {
	case n < 0:
		return nil
	case n == 0:
		return []byte{}
	}
	return r.dec.ReadBytes(n)
}

// Import reads a callback token and returns a transport to the exported
// dispatcher. The empty token yields a nil transport.
func (r *Reader) Import() Transport {
	token, ok := r.readToken()
	if !ok {
		return nil
	}
	t, err := r.broker.Import(token)
	if err != nil {
		r.Fail(err)
		return nil
	}
	return t
}

// importValue reads a callback token and returns its proxy. Brokers that
// track identity hand back the proxy built the first time the token was
// read.
func (r *Reader) importValue(proxy func(Transport) any) any {
	token, ok := r.readToken()
	if !ok {
		return nil
	}
	registry, tracked := r.broker.(CallbackRegistry)
	if !tracked {
		t, err := r.broker.Import(token)
		if err != nil {
			r.Fail(err)
			return nil
		}
		return proxy(t)
	}
	v, err := registry.ImportValue(token, proxy)
	if err != nil {
		r.Fail(err)
		return nil
	}
	return v
}

func (r *Reader) readToken() (string, bool) {
	token := r.ReadString()
	if token == "" || !r.ok() {
		return "", false
	}
	if r.broker == nil {
		r.Fail(ErrNoBroker)
		return "", false
	}
	return token, true
}
