package table

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestWrapForReading(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain ascii", []byte("a,b,c"), "a,b,c"},
		{"bom stripped", []byte{0xEF, 0xBB, 0xBF, 'a', ',', 'b'}, "a,b"},
		{"valid utf8 preserved", []byte("姓名,电话"), "姓名,电话"},
		{"invalid byte replaced", []byte{'a', 0xFF, 'b'}, "a?b"},
		{"truncated rune replaced", []byte{'a', 0xE4, 0xB8}, "a??"},
		{"short file no bom", []byte("ab"), "ab"},
		{"empty input", []byte{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(WrapForReading(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

// onebyteReader forces the smallest possible reads so multi-byte runes
// always split across Read calls.
type onebyteReader struct{ r io.Reader }

func (o onebyteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}

func TestUTF8Sanitizer_RuneSplitAcrossReads(t *testing.T) {
	const input = "姓名和电话"

	got, err := io.ReadAll(newUTF8Sanitizer(onebyteReader{strings.NewReader(input)}))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != input {
		t.Errorf("output = %q, want %q", got, input)
	}
}
