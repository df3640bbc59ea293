package trace

import "os"

func openFile(path string) (*os.File, *DecodeError) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Kind: IOError, Cause: err}
	}
	return f, nil
}
