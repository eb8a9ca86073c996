package compat

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidScoreSet         = errors.New("invalid score set")
	ErrInvalidRelationshipType = errors.New("invalid relationship type")
	ErrInvalidWeightTable      = errors.New("invalid weight table")
)

// ScoreSetError reports a malformed score set. Categories names the
// offending keys when the problem is per category.
type ScoreSetError struct {
	Reason     string
	Categories []string
}

func (e *ScoreSetError) Error() string {
	if len(e.Categories) == 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidScoreSet, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidScoreSet, e.Reason, strings.Join(e.Categories, ", "))
}

// Is reports whether target is ErrInvalidScoreSet.
func (e *ScoreSetError) Is(target error) bool { return target == ErrInvalidScoreSet }

// RelationshipTypeError reports a relationship type outside the closed set.
type RelationshipTypeError struct {
	Value string
}

func (e *RelationshipTypeError) Error() string {
	return fmt.Sprintf("%s: %q (want one of consistent, complicated, toxic)", ErrInvalidRelationshipType, e.Value)
}

// Is reports whether target is ErrInvalidRelationshipType.
func (e *RelationshipTypeError) Is(target error) bool { return target == ErrInvalidRelationshipType }
