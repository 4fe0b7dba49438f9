package ocr

import "errors"

// ErrNoImage is returned when the input file cannot be decoded as an image.
var ErrNoImage = errors.New("not a readable image")

// ErrNoWords is returned when the engine recognized no words at all.
var ErrNoWords = errors.New("no words recognized")
