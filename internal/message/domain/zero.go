package domain

// Zero overwrites key material in place. Nil slices are ignored.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// ZeroAll wipes every slice it is given, in order.
func ZeroAll(bufs ...[]byte) {
	for _, b := range bufs {
		Zero(b)
	}
}
