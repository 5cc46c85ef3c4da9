package domain

import (
	"errors"
	"fmt"
)

// Validation errors. They are reported to the caller and never change state.
var (
	ErrEmptyName     = errors.New("item name is empty")
	ErrDuplicateName = errors.New("an item with this name already exists")
	ErrTagRequired   = errors.New("select a tag first")
	ErrUnknownTag    = errors.New("unknown tag")
	ErrUnknownList   = errors.New("unknown list")
	ErrSameList      = errors.New("source and destination list are the same")
	ErrNotFound      = errors.New("item not found")
	ErrNotConfirmed  = errors.New("deletion was not confirmed")
	ErrEmptyTagName  = errors.New("tag name is empty")
	ErrEmptyColor    = errors.New("tag color is empty")
	ErrTagExists     = errors.New("tag already exists")
	ErrEmptyTitle    = errors.New("recipe title is empty")
	ErrEmptyNote     = errors.New("note is empty")
	ErrNoRecipe      = errors.New("recipe not found")
)

var validationErrors = []error{
	ErrEmptyName, ErrDuplicateName, ErrTagRequired, ErrUnknownTag,
	ErrUnknownList, ErrSameList, ErrNotFound, ErrNotConfirmed,
	ErrEmptyTagName, ErrEmptyColor, ErrTagExists, ErrEmptyTitle,
	ErrEmptyNote, ErrNoRecipe,
}

// IsValidation reports whether err is (or wraps) a validation failure.
func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// RemoteError is a failed read or write against the remote store.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote wraps err as a RemoteError for op. A nil err stays nil, and
// validation errors coming back from the store pass through untouched.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

// IsRemote reports whether err is a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
