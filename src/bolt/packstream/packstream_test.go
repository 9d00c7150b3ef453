package packstream

import (
	"bytes"
	"strings"
	"testing"
)

func TestPackInteger(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected []byte
	}{
		{"Tiny Int 0", 0, []byte{0x00}},
		{"Tiny Int Positive", 42, []byte{0x2A}},
		{"Tiny Int Negative", -1, []byte{0xFF}},
		{"Tiny Int Negative Boundary", -16, []byte{0xF0}},
		{"Int8 Negative", -128, []byte{0xC8, 0x80}},
		{"Int16 Positive (just above Int8 max)", 200, []byte{0xC9, 0x00, 0xC8}},
		{"Int16 Negative (just below Int8 min)", -129, []byte{0xC9, 0xFF, 0x7F}},
		{"Int32", 70000, []byte{0xCA, 0x00, 0x01, 0x11, 0x70}},
		{"Int64", 5000000000, []byte{0xCB, 0x00, 0x00, 0x00, 0x01, 0x2A, 0x05, 0xF2, 0x00}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := NewPacker(buf).Pack(test.input); err != nil {
				t.Fatalf("Pack: %v", err)
			}
			got := buf.Bytes()
			if !bytes.Equal(got, test.expected) {
				t.Errorf("Pack(%d) = %X, want %X", test.input, got, test.expected)
			}

			val, err := NewUnpacker(bytes.NewReader(got)).UnpackOne()
			if err != nil {
				t.Fatalf("UnpackOne: %v", err)
			}
			if val.(int64) != test.input {
				t.Errorf("UnpackOne returned %v, want %v", val, test.input)
			}
		})
	}
}

func TestPackString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
	}{
		{"Empty String", "", []byte{0x80}},
		{"Small String", "hello", []byte{0x85, 0x68, 0x65, 0x6C, 0x6C, 0x6F}},
		{"String8", strings.Repeat("a", 20), append([]byte{0xD0, 0x14}, []byte(strings.Repeat("a", 20))...)},
		{"String16", strings.Repeat("a", 300), append([]byte{0xD1, 0x01, 0x2C}, []byte(strings.Repeat("a", 300))...)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := NewPacker(buf).Pack(test.input); err != nil {
				t.Fatalf("Pack: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), test.expected) {
				t.Errorf("Pack(%q) = %X, want %X", test.input, buf.Bytes(), test.expected)
			}

			val, err := NewUnpacker(bytes.NewReader(buf.Bytes())).UnpackOne()
			if err != nil {
				t.Fatalf("UnpackOne: %v", err)
			}
			if val.(string) != test.input {
				t.Errorf("UnpackOne returned %q, want %q", val, test.input)
			}
		})
	}
}

func TestPackString32(t *testing.T) {
	long := strings.Repeat("x", 70000)
	buf := &bytes.Buffer{}
	if err := NewPacker(buf).Pack(long); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	got := buf.Bytes()
	if got[0] != string32Marker {
		t.Fatalf("expected String32 marker 0x%02X, got 0x%02X", string32Marker, got[0])
	}
	val, err := NewUnpacker(bytes.NewReader(got)).UnpackOne()
	if err != nil {
		t.Fatalf("UnpackOne: %v", err)
	}
	if val.(string) != long {
		t.Errorf("roundtrip mismatch, got length %d want %d", len(val.(string)), len(long))
	}
}

func TestPackBytes(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	buf := &bytes.Buffer{}
	if err := NewPacker(buf).Pack(data); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	expected := []byte{bytes8Marker, 0x03, 0x01, 0x02, 0x03}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("Pack(bytes) = %X, want %X", buf.Bytes(), expected)
	}
	val, err := NewUnpacker(bytes.NewReader(buf.Bytes())).UnpackOne()
	if err != nil {
		t.Fatalf("UnpackOne: %v", err)
	}
	if !bytes.Equal(val.([]byte), data) {
		t.Errorf("roundtrip mismatch: got %X want %X", val, data)
	}
}

func TestPackBoolAndNull(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPacker(buf)
	if err := p.Pack(true); err != nil {
		t.Fatal(err)
	}
	if err := p.Pack(false); err != nil {
		t.Fatal(err)
	}
	if err := p.Pack(nil); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{trueMarker, falseMarker, nullMarker}) {
		t.Errorf("got %X", buf.Bytes())
	}
}

func TestPackFloat(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewPacker(buf).Pack(3.14); err != nil {
		t.Fatal(err)
	}
	val, err := NewUnpacker(bytes.NewReader(buf.Bytes())).UnpackOne()
	if err != nil {
		t.Fatal(err)
	}
	if val.(float64) != 3.14 {
		t.Errorf("got %v", val)
	}
}

func TestPackListAndMap(t *testing.T) {
	list := []interface{}{int64(1), "two", 3.0, nil, true}
	buf := &bytes.Buffer{}
	if err := NewPacker(buf).Pack(list); err != nil {
		t.Fatal(err)
	}
	val, err := NewUnpacker(bytes.NewReader(buf.Bytes())).UnpackOne()
	if err != nil {
		t.Fatal(err)
	}
	got, ok := val.([]interface{})
	if !ok || len(got) != len(list) {
		t.Fatalf("got %#v", val)
	}

	m := map[string]interface{}{"k": int64(1)}
	buf.Reset()
	if err := NewPacker(buf).Pack(m); err != nil {
		t.Fatal(err)
	}
	expected := []byte{0xA1, 0x81, 0x6B, 0x01}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("Pack(map) = %X, want %X", buf.Bytes(), expected)
	}
}

func TestDuplicateMapKeyRejected(t *testing.T) {
	// {"k": 1, "k": 2} hand-encoded since a Go map can't hold a duplicate key.
	wire := []byte{0xA2, 0x81, 0x6B, 0x01, 0x81, 0x6B, 0x02}
	_, err := NewUnpacker(bytes.NewReader(wire)).UnpackOne()
	if err == nil {
		t.Fatal("expected error for duplicate map key")
	}
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != MalformedFormat {
		t.Fatalf("expected MalformedFormat, got %v", err)
	}
}

func TestNonStringMapKeyRejected(t *testing.T) {
	// {1: "x"} hand-encoded: a tiny map with an integer key.
	wire := []byte{0xA1, 0x01, 0x81, 0x78}
	_, err := NewUnpacker(bytes.NewReader(wire)).UnpackOne()
	if err == nil {
		t.Fatal("expected error for non-string map key")
	}
}

func TestUnknownMarkerIsMalformed(t *testing.T) {
	_, err := NewUnpacker(bytes.NewReader([]byte{0xC7})).UnpackOne()
	if err == nil {
		t.Fatal("expected error")
	}
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != MalformedFormat {
		t.Fatalf("expected MalformedFormat, got %v", err)
	}
}

func TestDeclaredSizeBeyondRemainingInputIsRejected(t *testing.T) {
	// A String16 marker declaring 1000 bytes, but with nothing following.
	wire := []byte{string16Marker, 0x03, 0xE8}
	_, err := NewUnpacker(bytes.NewReader(wire)).UnpackOne()
	if err == nil {
		t.Fatal("expected error for declared size exceeding remaining input")
	}
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != MalformedFormat {
		t.Fatalf("expected MalformedFormat, got %v", err)
	}
}

func TestEndOfStreamSentinel(t *testing.T) {
	val, err := NewUnpacker(bytes.NewReader([]byte{endOfStreamMarker})).UnpackOne()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := val.(EndOfStream); !ok {
		t.Fatalf("expected EndOfStream sentinel, got %#v", val)
	}
}

func TestMinimalEncodingChoosesSmallestClass(t *testing.T) {
	cases := []struct {
		v      int64
		marker byte
	}{
		{0, 0x00},
		{127, 0x7F},
		{128, int16Marker},
		{-128, int8Marker},
		{-129, int16Marker},
		{32767, int16Marker},
		{32768, int32Marker},
		{1 << 32, int64Marker},
	}
	for _, c := range cases {
		buf := &bytes.Buffer{}
		if err := NewPacker(buf).Pack(c.v); err != nil {
			t.Fatal(err)
		}
		got := buf.Bytes()[0]
		if c.v >= tinyIntMin && c.v <= tinyIntMax {
			if got != byte(c.v) {
				t.Errorf("%d: got marker 0x%02X, want tiny 0x%02X", c.v, got, byte(c.v))
			}
			continue
		}
		if got != c.marker {
			t.Errorf("%d: got marker 0x%02X, want 0x%02X", c.v, got, c.marker)
		}
	}
}

func TestUnsupportedStructSignatureInVersion1(t *testing.T) {
	// Struct header for signature 'D' (Date), arity 3, with no field bytes:
	// resolution must fail before any field is read.
	wire := []byte{0xB3, 0x44}
	_, err := NewUnpacker(bytes.NewReader(wire)).UnpackOne()
	if err == nil {
		t.Fatal("expected error")
	}
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != StructNotSupportedInThisVersion {
		t.Fatalf("expected StructNotSupportedInThisVersion, got %v", err)
	}
}

func TestUnknownStructSignature(t *testing.T) {
	wire := []byte{0xB0, 0x5A} // arity 0, signature 'Z' (never registered)
	_, err := NewUnpacker(bytes.NewReader(wire)).UnpackOne()
	if err == nil {
		t.Fatal("expected error")
	}
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != StructSignatureUnknown {
		t.Fatalf("expected StructSignatureUnknown, got %v", err)
	}
}

func TestTemporalTypeRejectedInVersion1(t *testing.T) {
	_, err := Pack(Duration{Months: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != TypeNotSupportedInThisVersion {
		t.Fatalf("expected TypeNotSupportedInThisVersion, got %v", err)
	}
	if !strings.Contains(ce.Message, "Duration") {
		t.Errorf("expected message to name the offending type, got %q", ce.Message)
	}
}
