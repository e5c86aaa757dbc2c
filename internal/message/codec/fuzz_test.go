package codec

import (
	"testing"

	"github.com/allisson/envelope/internal/message/domain"
)

func FuzzParseHeader(f *testing.F) {
	for _, id := range []domain.SuiteID{domain.AES128GCMNoKDF, domain.AES256GCMHKDFSHA512CommitP384} {
		h := newHeader(f, id, domain.EncryptionContext{"tenant": "acme"})
		raw, err := SerializeHeader(h)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(raw)
	}
	f.Add([]byte{})
	f.Add([]byte{0x02, 0x05, 0x78})

	f.Fuzz(func(t *testing.T, data []byte) {
		parsed, err := ParseHeader(data, 0)
		if err != nil {
			return
		}
		if parsed.Consumed > len(data) {
			t.Fatalf("consumed %d of %d bytes", parsed.Consumed, len(data))
		}
		out, err := SerializeHeader(parsed.Header)
		if err != nil {
			t.Fatalf("re-serialize parsed header: %v", err)
		}
		if _, err := ParseHeader(out, 0); err != nil {
			t.Fatalf("re-parse serialized header: %v", err)
		}
	})
}
