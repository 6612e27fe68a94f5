package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterContent(t *testing.T) {
	ms := NewModerationService()

	ok, reason := ms.FilterContent("Fresh bread, pick up after 6")
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = ms.FilterContent("total SCAM")
	assert.False(t, ok)
	assert.Equal(t, "inappropriate_language", reason)

	// Word boundaries: "scampi" is food.
	ok, _ = ms.FilterContent("Garlic scampi")
	assert.True(t, ok)

	ok, reason = ms.FilterContent("freeeeeeee food!!!!!!!")
	assert.False(t, ok)
	assert.Equal(t, "spam_detected", reason)
}

func TestGetRejectionMessage(t *testing.T) {
	ms := NewModerationService()
	assert.Equal(t, "appears to be spam", ms.GetRejectionMessage("spam_detected"))
	assert.Equal(t, "does not meet our content guidelines", ms.GetRejectionMessage("other"))
}
