// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/apperr"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "artist_key", "abc", false},
		{"empty_string", "artist_key", "", true},
		{"whitespace_only", "artist_key", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, apperr.CodeValidation, ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Range checks inclusive bounds.
*/
func TestValidator_Range(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		isValid bool
	}{
		{"lower_bound", 0, true},
		{"upper_bound", 23, true},
		{"below", -1, false},
		{"above", 24, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Range("hour", tt.value, 0, 23)
			assert.Equal(t, !tt.isValid, v.Err() != nil)
		})
	}
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("artist_key", "").                    // Fails
		OneOf("backend", "etcd", "postgres", "redis"). // Fails
		Custom("rps", true, "Must be positive").       // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 3)
}

/*
TestValidator_PreconditionErr verifies precondition classification.
*/
func TestValidator_PreconditionErr(t *testing.T) {
	v := &validate.Validator{}
	assert.NoError(t, v.Required("external_id", "UC123").PreconditionErr("run aborted"))

	err := v.Required("artist_key", " ").PreconditionErr("run aborted")
	require.Error(t, err)
	assert.True(t, apperr.IsPrecondition(err))
}
