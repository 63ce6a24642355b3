package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last+tag@sub.example.org", "x@y.z"}
	invalid := []string{"", "a@b", "a b@c.com", "@b.com", "a@.com", "a@b.", "a@@b.com", "plain", "a@b .com"}

	for _, s := range valid {
		assert.True(t, ValidEmail(s), s)
	}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), s)
	}
}

func TestNew_CustomTags(t *testing.T) {
	type form struct {
		Email string `validate:"emailformat"`
		Name  string `validate:"notblank"`
	}
	v := New()

	require.NoError(t, v.Struct(form{Email: "a@b.com", Name: "Amy"}))

	err := v.Struct(form{Email: "nope", Name: "   "})
	require.Error(t, err)
	assert.Equal(t, []string{"Email", "Name"}, Fields(err))
}
