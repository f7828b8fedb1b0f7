// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrDataInsufficient = errors.New("insufficient data")
	ErrTraining         = errors.New("training failed")
	ErrModelNotTrained  = errors.New("model not trained")
	ErrPersistence      = errors.New("persistence failed")
)

// DataInsufficiencyError reports an empty or degenerate interaction set.
type DataInsufficiencyError struct {
	Reason string
}

func (e *DataInsufficiencyError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

// Is matches ErrDataInsufficient.
func (e *DataInsufficiencyError) Is(target error) bool {
	return target == ErrDataInsufficient
}

// TrainingError reports that factorization is undefined for the input or
// that the training configuration cannot be applied to it.
type TrainingError struct {
	Reason string
	Users  int
	Items  int
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training failed: %s (users=%d, items=%d)", e.Reason, e.Users, e.Items)
}

// Is matches ErrTraining.
func (e *TrainingError) Is(target error) bool {
	return target == ErrTraining
}

// ModelNotTrainedError reports prediction against a model that never finished
// training.
type ModelNotTrainedError struct {
	Model string
}

func (e *ModelNotTrainedError) Error() string {
	if e.Model == "" {
		return "model not trained"
	}
	return fmt.Sprintf("model %q not trained", e.Model)
}

// Is matches ErrModelNotTrained.
func (e *ModelNotTrainedError) Is(target error) bool {
	return target == ErrModelNotTrained
}

// PersistenceError wraps a failed recommendation write. The whole batch has
// been rolled back when this error is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist recommendations (%s): %v", e.Op, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is matches ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// FriendLookupGap records a friend edge pointing at a user with no ranked
// list. Gaps are recovered silently and only counted in run statistics.
type FriendLookupGap struct {
	UserID   string `json:"user_id"`
	FriendID string `json:"friend_id"`
}

func (g FriendLookupGap) String() string {
	return g.UserID + "->" + g.FriendID
}
