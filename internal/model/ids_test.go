package model

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidRepositoryID(t *testing.T) {
	v4 := uuid.NewString()

	assert.True(t, ValidRepositoryID(v4))
	assert.True(t, ValidRepositoryID("4d2b7a66-8e2c-4d3f-9b1a-2f6c7e9d0a11"))

	assert.False(t, ValidRepositoryID(strings.ToUpper(v4)), "uppercase is not canonical")
	assert.False(t, ValidRepositoryID("{"+v4+"}"))
	assert.False(t, ValidRepositoryID("urn:uuid:"+v4))
	assert.False(t, ValidRepositoryID(strings.ReplaceAll(v4, "-", "")))
	assert.False(t, ValidRepositoryID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), "version 1")
	assert.False(t, ValidRepositoryID("not-a-uuid"))
	assert.False(t, ValidRepositoryID(""))
}
