package codec

import (
	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/loc"
)

type (
	// AssertError reports bits the hardware documents as fixed
	// found with the other value.
	AssertError struct {
		Word  uint64
		GPUID int
		Msg   string
		PC    loc.PC
	}

	// AssertHandler is called before the decoder gives up on a word.
	// It may panic to abort or return to let decoding go on.
	AssertHandler func(e *AssertError)

	checker interface {
		check() string
	}
)

// Abort panics with the assertion.
func Abort(e *AssertError) {
	logAssert(e)

	panic(e)
}

// Report lets decoding go on; the assertion is returned as an error.
func Report(e *AssertError) {
	logAssert(e)
}

func (e *AssertError) Error() string {
	return string(hfmt.Appendf(nil, "assert: %s (word %016x, gpu %d)", e.Msg, e.Word, e.GPUID))
}

func (d *Decoder) assert(w uint64, msg string) *AssertError {
	e := &AssertError{
		Word:  w,
		GPUID: d.GPUID,
		Msg:   msg,
		PC:    loc.Caller(1),
	}

	h := d.Assert
	if h == nil {
		h = Abort
	}

	h(e)

	return e
}
