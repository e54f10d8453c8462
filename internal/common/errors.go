package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrValidation   = errors.New("validation failed")

	ErrExtraction     = errors.New("extraction failed")
	ErrVocabularyLoad = errors.New("vocabulary load failed")
	ErrDatasetMerge   = errors.New("dataset merge failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ExtractionStage names the step of per-document processing that failed.
type ExtractionStage string

const (
	StageText  ExtractionStage = "TEXT"  // source unreadable or empty
	StageLLM   ExtractionStage = "LLM"   // upstream model call failed
	StageParse ExtractionStage = "PARSE" // model answer was not a usable record
)

// ExtractionError is a per-document failure. The batch reports it and moves on.
type ExtractionError struct {
	SourceFile string
	Stage      ExtractionStage
	Err        error
}

func NewExtractionError(sourceFile string, stage ExtractionStage, err error) *ExtractionError {
	return &ExtractionError{SourceFile: sourceFile, Stage: stage, Err: err}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.SourceFile, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// VocabularyLoadError means an existing vocabulary file could not be read or parsed.
type VocabularyLoadError struct {
	Path string
	Err  error
}

func (e *VocabularyLoadError) Error() string {
	return fmt.Sprintf("load vocabulary %s: %v", e.Path, e.Err)
}

func (e *VocabularyLoadError) Unwrap() error { return e.Err }

func (e *VocabularyLoadError) Is(target error) bool { return target == ErrVocabularyLoad }

// DatasetMergeError means the persisted dataset cannot be reconciled with new records,
// typically because it lacks the SourceFile identifier column.
type DatasetMergeError struct {
	Path string
	Err  error
}

func (e *DatasetMergeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("merge dataset: %v", e.Err)
	}
	return fmt.Sprintf("merge dataset %s: %v", e.Path, e.Err)
}

func (e *DatasetMergeError) Unwrap() error { return e.Err }

func (e *DatasetMergeError) Is(target error) bool { return target == ErrDatasetMerge }
