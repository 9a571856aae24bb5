package core

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies why a translation stopped.
type FailureKind string

const (
	MissingDirectory        FailureKind = "MissingDirectory"
	MissingModFolder        FailureKind = "MissingModFolder"
	MissingSourceFile       FailureKind = "MissingSourceFile"
	MissingIntermediateFile FailureKind = "MissingIntermediateFile"
	ParseFailure            FailureKind = "ParseFailure"
	WriteFailure            FailureKind = "WriteFailure"
	DeleteFailure           FailureKind = "DeleteFailure"
)

// Common errors, one per failure kind. Use errors.Is against a *Failure.
var (
	ErrMissingDirectory        = errors.New("directory does not exist")
	ErrMissingModFolder        = errors.New("mod folder does not exist")
	ErrMissingSourceFile       = errors.New(SourceFileName + " does not exist")
	ErrMissingIntermediateFile = errors.New(ArtifactFileName + " does not exist")
	ErrParse                   = errors.New("document could not be parsed")
	ErrWrite                   = errors.New("document could not be written")
	ErrDelete                  = errors.New("file could not be deleted")
)

var sentinels = map[FailureKind]error{
	MissingDirectory:        ErrMissingDirectory,
	MissingModFolder:        ErrMissingModFolder,
	MissingSourceFile:       ErrMissingSourceFile,
	MissingIntermediateFile: ErrMissingIntermediateFile,
	ParseFailure:            ErrParse,
	WriteFailure:            ErrWrite,
	DeleteFailure:           ErrDelete,
}

// Failure is the error returned by bridge operations.
// Message is the human-readable line shown to the user and written to the log.
type Failure struct {
	Kind    FailureKind
	Path    string
	Message string
	Err     error
}

// NewFailure builds a Failure. err may be nil for guard failures.
func NewFailure(kind FailureKind, path, message string, err error) *Failure {
	return &Failure{Kind: kind, Path: path, Message: message, Err: err}
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, strings.TrimSuffix(f.Message, "."), f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches the sentinel error of the failure's kind.
func (f *Failure) Is(target error) bool {
	return sentinels[f.Kind] == target
}

// KindOf extracts the FailureKind from err, or "" when err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
