package csvstore

import "fmt"

// OutputWriteError reports a failure reading or writing the destination file
type OutputWriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error {
	return e.Err
}
