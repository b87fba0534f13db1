// Package pipeline drives posts through the content review state machine.
package pipeline

import "github.com/postline/postline/internal/server/models"

// transitions enumerates the allowed status moves. A rejection back to
// idea is allowed from anywhere and handled separately in CanTransition.
var transitions = map[models.Status][]models.Status{
	models.StatusIdea:         {models.StatusIdeaApproved, models.StatusApproved},
	models.StatusIdeaApproved: {models.StatusApproved, models.StatusGenerating},
	models.StatusGenerating:   {models.StatusPhotoReview},
	models.StatusPhotoReview:  {models.StatusApproved},
	models.StatusApproved:     {models.StatusPosted, models.StatusFailed},
	models.StatusFailed:       {models.StatusApproved},
}

// CanTransition reports whether a post may move from one status to another.
func CanTransition(from, to models.Status) bool {
	if to == models.StatusIdea {
		// Rejection restarts the pipeline from any stage, including a post
		// still sitting in idea. Posted and failed are terminal only for a
		// single publish attempt, not the post.
		return true
	}
	if from == to {
		return false
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
