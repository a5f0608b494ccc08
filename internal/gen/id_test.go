package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	id := ID()
	assert.Len(t, id, 12)
	assert.Equal(t, strings.ToUpper(id), id)
	assert.NotEqual(t, id, ID())
}

func TestTempName(t *testing.T) {
	name := TempName()
	assert.Len(t, name, 32+len(".xlsx"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
	assert.NotContains(t, name, "/")
	assert.NotEqual(t, name, TempName())
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "rival.xlsx", BaseName("rival.xlsx"))
	assert.Equal(t, "rival.xlsx", BaseName(`C:\Users\kim\rival.xlsx`))
	assert.Equal(t, "rival.xlsx", BaseName("/tmp/rival.xlsx"))
	assert.Equal(t, "upload.xlsx", BaseName(""))
	assert.Equal(t, "upload.xlsx", BaseName(".."))
}
