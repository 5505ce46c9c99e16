package mailservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTemplate(t *testing.T) {
	template := &Template{}

	testCases := []struct {
		name         string
		templateName string
		data         any
		expectedErr  bool
	}{
		{
			name:         "welcome email",
			templateName: "welcome_email.html",
			data: welcomeEvent{
				Email: "alice@example.com",
				Name:  "Alice",
			},
			expectedErr: false,
		},
		{
			name:         "activity email like",
			templateName: "activity_email.html",
			data: activityEvent{
				Email:     "bob@example.com",
				Recipient: "Bob",
				Actor:     "Alice",
				BlogTitle: "My First Post",
				Kind:      "like",
			},
			expectedErr: false,
		},
		{
			name:         "activity email comment",
			templateName: "activity_email.html",
			data: activityEvent{
				Email:     "bob@example.com",
				Recipient: "Bob",
				Actor:     "Alice",
				BlogTitle: "My First Post",
				Kind:      "comment",
			},
			expectedErr: false,
		},
		{
			name:         "invalid template name",
			templateName: "invalid_template.html",
			data:         nil,
			expectedErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, h, err := template.ParseTemplate(tc.templateName, tc.data)
			assert.Equal(t, tc.expectedErr, err != nil)

			if err == nil {
				assert.NotEmpty(t, s.String())
				assert.NotEmpty(t, p.String())
				assert.NotEmpty(t, h.String())
			}
		})
	}
}
