package domain

// DerivedKeyMaterial is the per-message frame key plus, for committing suites, the
// commitment value. It lives for one encrypt or decrypt call and must be wiped with
// Zero before that call returns.
type DerivedKeyMaterial struct {
	Key        []byte
	Commitment []byte
}

// Zero wipes the key and commitment value.
func (m *DerivedKeyMaterial) Zero() {
	if m == nil {
		return
	}
	ZeroAll(m.Key, m.Commitment)
}
