package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDebugAllDomains(t *testing.T) {
	t.Cleanup(func() { SetDebug(false, nil) })

	SetDebug(true, nil)
	assert.True(t, IsDebugEnabled())
	assert.True(t, IsDebugEnabledForDomain("llm"))
	assert.True(t, IsDebugEnabledForDomain("anything"))
}

func TestSetDebugSpecificDomains(t *testing.T) {
	t.Cleanup(func() { SetDebug(false, nil) })

	SetDebug(true, []string{"llm", " hooks "})
	assert.True(t, IsDebugEnabledForDomain("llm"))
	assert.True(t, IsDebugEnabledForDomain("hooks"))
	assert.False(t, IsDebugEnabledForDomain("persistence"))
}

func TestDebugDisabled(t *testing.T) {
	SetDebug(false, nil)
	assert.False(t, IsDebugEnabled())
	assert.False(t, IsDebugEnabledForDomain("llm"))
}
