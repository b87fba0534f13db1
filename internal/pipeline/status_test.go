package pipeline

import (
	"testing"

	"github.com/postline/postline/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.Status
		to   models.Status
		want bool
	}{
		{"idea to idea approved", models.StatusIdea, models.StatusIdeaApproved, true},
		{"idea straight to approved", models.StatusIdea, models.StatusApproved, true},
		{"idea approved to approved", models.StatusIdeaApproved, models.StatusApproved, true},
		{"idea approved to generating", models.StatusIdeaApproved, models.StatusGenerating, true},
		{"generating to photo review", models.StatusGenerating, models.StatusPhotoReview, true},
		{"photo review to approved", models.StatusPhotoReview, models.StatusApproved, true},
		{"approved to posted", models.StatusApproved, models.StatusPosted, true},
		{"approved to failed", models.StatusApproved, models.StatusFailed, true},
		{"failed back to approved", models.StatusFailed, models.StatusApproved, true},
		{"reject from photo review", models.StatusPhotoReview, models.StatusIdea, true},
		{"reject from posted", models.StatusPosted, models.StatusIdea, true},
		{"reject from failed", models.StatusFailed, models.StatusIdea, true},

		{"reject while still an idea", models.StatusIdea, models.StatusIdea, true},
		{"no other self transition", models.StatusApproved, models.StatusApproved, false},
		{"posted does not re-enter posted", models.StatusPosted, models.StatusPosted, false},
		{"idea cannot jump to posted", models.StatusIdea, models.StatusPosted, false},
		{"idea cannot enter photo review", models.StatusIdea, models.StatusPhotoReview, false},
		{"generating cannot skip review", models.StatusGenerating, models.StatusApproved, false},
		{"posted cannot go to approved", models.StatusPosted, models.StatusApproved, false},
		{"posted cannot fail afterwards", models.StatusPosted, models.StatusFailed, false},
		{"approved cannot regress to review", models.StatusApproved, models.StatusPhotoReview, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}
