package util

import "golang.org/x/xerrors"

// WrapErr prefixes err with msg. The result still matches err under
// errors.Is and errors.As.
func WrapErr(msg string, err error) error {
	return xerrors.Errorf("%s: %w", msg, err)
}
