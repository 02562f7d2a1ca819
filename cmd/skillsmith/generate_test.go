package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDomains(t *testing.T) {
	assert.Equal(t, []string{"engineering", "sales"}, splitDomains("engineering,sales"))
	assert.Equal(t, []string{"engineering"}, splitDomains(" engineering , , "))
	assert.Nil(t, splitDomains(""))
}

func TestGenerateConfigDefaults(t *testing.T) {
	config := NewGenerateConfig()
	assert.Equal(t, 10, config.PerDomain)
	assert.Equal(t, "skills", config.TargetDir)
	assert.False(t, config.Force)
	assert.Contains(t, config.Domains, "engineering")
}
