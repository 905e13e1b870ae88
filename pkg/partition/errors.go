package partition

import "errors"

// ErrSizeMismatch indicates a cost vector whose length differs from the
// optimizer's section count.
var ErrSizeMismatch = errors.New("cost vector length does not match section count")
