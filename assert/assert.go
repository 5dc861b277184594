package assert

import "github.com/oomph-ac/springbone/oerror"

// IsTrue panics with the formatted message if ok is false. It is reserved for programmer errors,
// never for bad input data.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
