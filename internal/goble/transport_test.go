package goble

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUUID(t *testing.T) {
	assert.Equal(t,
		"273e00014c4d454d96bef03bac821358",
		normalizeUUID("273E0001-4C4D-454D-96BE-F03BAC821358"))
	assert.Equal(t, "fe8d", normalizeUUID("FE8D"))
}
