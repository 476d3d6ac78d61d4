package ffmpeg

import "fmt"

// EncodingError reports an encoder invocation that exited non-zero or did
// not produce its output file.
type EncodingError struct {
	Op     string
	Output string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding failed (%s -> %s): %v", e.Op, e.Output, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
