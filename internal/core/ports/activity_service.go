package ports

import (
	"context"
	"time"
)

// ActivityInput is the DTO passed from the transport layer to ActivityService.
type ActivityInput struct {
	Username  string
	Kind      string
	Amount    int64
	Timestamp time.Time
	Source    string
}

// ActivityService applies collaborator-reported activity to user statistics.
type ActivityService interface {
	Process(ctx context.Context, event ActivityInput) error
}
