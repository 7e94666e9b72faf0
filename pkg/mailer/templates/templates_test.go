package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Welcome(t *testing.T) {
	data := NewWelcomeData("alice", "alice@example.com",
		WithAppName("Tasks"),
		WithTime(time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC)))

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Tasks", subject)
	assert.Contains(t, text, "alice@example.com")
	assert.Contains(t, text, "02 January 2025, 15:04")
	assert.Contains(t, html, "Welcome, alice!")
}

func TestRender_AccountDeletedDefaultsAppName(t *testing.T) {
	data := NewAccountDeletedData("bob", "bob@example.com", WithTaskCount(3))

	subject, text, _, err := Render(AccountDeleted, data)
	require.NoError(t, err)
	assert.Equal(t, "Your Task Manager account was removed", subject)
	assert.Contains(t, text, "3 task(s)")
}

func TestRender_EscapesHTML(t *testing.T) {
	_, _, html, err := Render(Welcome, NewWelcomeData("<script>", "x@example.com"))
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRender_Unknown(t *testing.T) {
	_, _, _, err := Render("login_otp", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}
