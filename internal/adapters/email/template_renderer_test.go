package email

import (
	"testing"

	"gatherly/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_RegistrationConfirmation(t *testing.T) {
	renderer := NewTemplateRenderer()
	data := &domain.RegistrationConfirmationEmailData{
		Email:      "alice@example.com",
		Username:   "alice",
		EventTitle: "Go Meetup",
		EventDate:  "June 1, 2026 18:00 UTC",
		Location:   "Community Hall",
	}

	subject, htmlBody, textBody, err := renderer.Render("registration_confirmation", data)
	require.NoError(t, err)
	assert.Contains(t, subject, "Go Meetup")
	assert.Contains(t, htmlBody, "Go Meetup")
	assert.Contains(t, htmlBody, "Community Hall")
	assert.Contains(t, textBody, "June 1, 2026 18:00 UTC")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	renderer := NewTemplateRenderer()
	_, _, _, err := renderer.Render("no_such_template", nil)
	require.Error(t, err)
}
