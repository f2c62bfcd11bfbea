package csr

import "errors"

// ErrUnknownCSR is returned when an index names no register this file
// models. Real hardware would raise an illegal-instruction exception; here
// the error is returned to the caller of Read or Write.
var ErrUnknownCSR = errors.New("csr: unknown register")
