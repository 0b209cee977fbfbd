package poll

import (
	"testing"
	"time"
)

func accessPoll(status Status) *Poll {
	return &Poll{
		Meta: Meta{
			ID:             "p1",
			Secret:         "abc-defg-hij",
			CreatedAt:      time.Now().UTC(),
			CreatedByEmail: "owner@x.com",
			Title:          "Lunch",
			ChoiceType:     ChoiceSingle,
			ColorScheme:    ColorBlue,
			Status:         status,
		},
		Options: []string{"Pizza", "Sushi"},
		Users: []PollUser{
			{User: User{Name: "owner", Email: "owner@x.com"}, Status: UserEligible},
			{User: User{Name: "eligible", Email: "eligible@x.com"}, Status: UserEligible},
			{User: User{Name: "voted", Email: "voted@x.com"}, Status: UserVoted},
		},
	}
}

func TestCanView(t *testing.T) {
	p := accessPoll(StatusOpen)

	tests := []struct {
		name   string
		email  string
		secret string
		want   bool
	}{
		{"creator", "owner@x.com", "", true},
		{"eligible user", "eligible@x.com", "", true},
		{"voted user", "voted@x.com", "", true},
		{"stranger", "stranger@x.com", "", false},
		{"stranger with secret", "stranger@x.com", "abc-defg-hij", true},
		{"stranger with wrong secret", "stranger@x.com", "xxx-xxxx-xxx", false},
		{"empty secret does not match", "stranger@x.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanView(p, User{Name: tt.email, Email: tt.email}, tt.secret)
			if got != tt.want {
				t.Errorf("CanView = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanVote(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		email  string
		secret string
		want   bool
	}{
		{"eligible on open poll", StatusOpen, "eligible@x.com", "", true},
		{"voted without secret", StatusOpen, "voted@x.com", "", false},
		{"voted with secret", StatusOpen, "voted@x.com", "abc-defg-hij", true},
		{"stranger without secret", StatusOpen, "stranger@x.com", "", false},
		{"stranger with secret", StatusOpen, "stranger@x.com", "abc-defg-hij", true},
		{"eligible on closed poll", StatusClosed, "eligible@x.com", "", false},
		{"secret on closed poll", StatusClosed, "stranger@x.com", "abc-defg-hij", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := accessPoll(tt.status)
			got := CanVote(p, User{Name: tt.email, Email: tt.email}, tt.secret)
			if got != tt.want {
				t.Errorf("CanVote = %v, want %v", got, tt.want)
			}
		})
	}
}
