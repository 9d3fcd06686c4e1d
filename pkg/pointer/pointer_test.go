// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/pointer"
)

func TestToVal(t *testing.T) {
	count := pointer.To(10)
	assert.Equal(t, 10, pointer.Val(count))

	*count = 11
	assert.Equal(t, 11, pointer.Val(count))

	var missing *string
	assert.Equal(t, "", pointer.Val(missing))
}
