package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// ZeroAlignmentError is the error returned from CheckAlignment if an alignment of zero is provided
var ZeroAlignmentError error = errors.New("alignment must be at least 1")
