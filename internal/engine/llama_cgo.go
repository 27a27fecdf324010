//go:build llama

package engine

// cgo link directives for the in-process llama runtime. An rpath of
// $ORIGIN lets the loader find libllama.so next to the built binary,
// and -L${SRCDIR}/../../bin resolves it at link time.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"
