package idempotency

import "github.com/google/uuid"

var fingerprintNamespace = uuid.MustParse("6f1c2a53-8a0e-4d55-9a5e-1f3b1d7c9e42")

// Fingerprint identifies a request by method, path and body.
func Fingerprint(method, path string, body []byte) string {
	data := make([]byte, 0, len(method)+len(path)+len(body)+2)
	data = append(data, method...)
	data = append(data, ' ')
	data = append(data, path...)
	data = append(data, '\n')
	data = append(data, body...)

	return uuid.NewSHA1(fingerprintNamespace, data).String()
}
