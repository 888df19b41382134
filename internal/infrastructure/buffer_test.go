package infrastructure

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRequestBufferGrowth(t *testing.T) {
	var b RequestBuffer
	if b.Cap() != 0 || b.Len() != 0 {
		t.Fatalf("expected empty buffer, got len=%d cap=%d", b.Len(), b.Cap())
	}

	b.Append("GET")
	if b.Cap() != 256 {
		t.Errorf("expected first reservation of 256, got %d", b.Cap())
	}

	b.Append(strings.Repeat("x", 300))
	if b.Cap() != 512 {
		t.Errorf("expected capacity to double to 512, got %d", b.Cap())
	}

	b.AppendBytes(make([]byte, 2000))
	if b.Cap() != 4096 {
		t.Errorf("expected capacity 4096, got %d", b.Cap())
	}
	if b.Len() != 2303 {
		t.Errorf("expected length 2303, got %d", b.Len())
	}

	b.Reset()
	if b.Len() != 0 || b.Cap() != 0 || b.Bytes() != nil {
		t.Error("expected Reset to release storage")
	}
}

func TestRequestBufferAppendf(t *testing.T) {
	var b RequestBuffer
	b.Appendf("Host: %s:%d\r\n", "127.0.0.1", 9001)
	if got := b.String(); got != "Host: 127.0.0.1:9001\r\n" {
		t.Errorf("String() = %q", got)
	}
}

func TestProperty_RequestBufferAccumulates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("contents equal the concatenation and capacity is 256*2^k", prop.ForAll(
		func(parts []string) bool {
			var b RequestBuffer
			for _, p := range parts {
				b.Append(p)
			}
			if b.String() != strings.Join(parts, "") {
				return false
			}
			if b.Cap() == 0 {
				return b.Len() == 0
			}
			c := b.Cap()
			for c > 256 && c%2 == 0 {
				c /= 2
			}
			return c == 256 && b.Cap() >= b.Len()
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
