// Package io fans a single pull-based source out to any number of readers.
package io

// Reader produces values of type T. release must be called once the value
// has been consumed.
type Reader[T any] interface {
	Read() (data T, release func(), err error)
}

// ReaderFunc is a proxy type to make easier for users to implement Reader
type ReaderFunc[T any] func() (data T, release func(), err error)

func (f ReaderFunc[T]) Read() (T, func(), error) {
	return f()
}
