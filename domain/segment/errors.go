package segment

import "github.com/pkg/errors"

// Error taxonomy. Every failure is terminal to the current operation only.
var (
	ErrLayoutNotReady    = errors.New("layout not ready")
	ErrOutOfBounds       = errors.New("point outside image")
	ErrEmptyPrompt       = errors.New("empty prompt")
	ErrEmbeddingNotReady = errors.New("embedding not ready")
	ErrNoCandidates      = errors.New("no candidate masks")
	ErrNoMaskAvailable   = errors.New("no mask available")
	ErrModel             = errors.New("model error")
	ErrCodec             = errors.New("codec error")
)

var kinds = []error{
	ErrLayoutNotReady,
	ErrOutOfBounds,
	ErrEmptyPrompt,
	ErrEmbeddingNotReady,
	ErrNoCandidates,
	ErrNoMaskAvailable,
	ErrModel,
	ErrCodec,
}

// Error attaches a taxonomy kind and the failing operation to a cause.
// errors.Is matches both the kind and anything in the wrapped chain.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

// ModelError wraps an oracle failure. A nil err yields nil.
func ModelError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrModel, Op: op, Err: errors.WithStack(err)}
}

// CodecError wraps a decode or encode failure. A nil err yields nil.
func CodecError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrCodec, Op: op, Err: errors.WithStack(err)}
}

// KindOf returns the outermost taxonomy kind found in err, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
