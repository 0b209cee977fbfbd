package poll

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service runs the user-facing poll operations on top of the repository and
// the access rules. Owner-only operations (delete, add users, close) reject
// everyone but the creator.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ListVisible returns every poll the viewer may see, newest first.
func (s *Service) ListVisible(ctx context.Context, viewer User) ([]*Poll, error) {
	polls, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*Poll, 0, len(polls))
	for _, p := range polls {
		if CanView(p, viewer, "") {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *Service) Get(ctx context.Context, viewer User, id, secret string) (*Poll, error) {
	p, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(p, viewer, secret) {
		return nil, &ForbiddenError{Reason: "you do not have access to this poll"}
	}
	return p, nil
}

// Create validates the draft and persists it with the creator already on the
// roster. Nothing is written when validation fails.
func (s *Service) Create(ctx context.Context, creator User, draft Draft) (*Poll, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, draft, creator)
}

func (s *Service) Delete(ctx context.Context, actor User, id string) error {
	p, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return err
	}
	if p.CreatedByEmail != actor.Email {
		return &ForbiddenError{Reason: "only the poll creator can delete the poll"}
	}
	return s.repo.Delete(ctx, id)
}

// AddUsers extends the eligibility roster and returns the refreshed poll.
// Emails already on the roster keep their status.
func (s *Service) AddUsers(ctx context.Context, actor User, id string, emails []string) (*Poll, error) {
	p, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CreatedByEmail != actor.Email {
		return nil, &ForbiddenError{Reason: "only the poll creator can add users to the poll"}
	}

	if err := validateEmails(emails); err != nil {
		return nil, err
	}

	if err := s.repo.SetEligible(ctx, id, emails); err != nil {
		return nil, err
	}
	return s.repo.Fetch(ctx, id)
}

// Vote records the voter's selection. A voter losing the conditional write
// race is reported the same way as one who already voted.
func (s *Service) Vote(ctx context.Context, voter User, id string, values []string, secret string) error {
	p, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return err
	}
	if !CanVote(p, voter, secret) {
		return &ForbiddenError{Reason: "you are not eligible to vote in this poll"}
	}

	if len(values) == 0 {
		return newValidationError("values", "no vote values provided")
	}
	if p.ChoiceType == ChoiceSingle && distinctCount(values) > 1 {
		return newValidationError("values", "this poll accepts a single choice")
	}

	viaSecret := secret != "" && secret == p.Secret
	err = s.repo.RecordVote(ctx, id, voter.Email, values, viaSecret)
	if errors.Is(err, ErrVoteConflict) {
		return &ForbiddenError{Reason: "you have already voted in this poll"}
	}
	return err
}

func (s *Service) Close(ctx context.Context, actor User, id string) (*Poll, error) {
	p, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CreatedByEmail != actor.Email {
		return nil, &ForbiddenError{Reason: "only the poll creator can close the poll"}
	}

	if err := s.repo.SetStatus(ctx, id, StatusClosed); err != nil {
		return nil, err
	}
	return s.repo.Fetch(ctx, id)
}

// validateEmails rejects anything that cannot safely become an eligibility
// key segment: a colon would make the key ambiguous against the meta and
// ballot patterns.
func validateEmails(emails []string) error {
	v := &ValidationError{}
	for _, email := range emails {
		if !strings.Contains(email, "@") || strings.Contains(email, ":") {
			v.add("users", fmt.Sprintf("invalid email %q", email))
		}
	}
	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

func distinctCount(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
