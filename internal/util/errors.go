package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in PDF")

	ErrMalformedOutput    = errors.New("provider returned malformed output")
	ErrGroundingViolation = errors.New("supporting quote not found in source")

	ErrJobNotFound       = errors.New("ingestion job not found")
	ErrJobDeleted        = errors.New("ingestion job deleted")
	ErrInvalidTransition = errors.New("invalid job state transition")
)
