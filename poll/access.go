package poll

// CanView reports whether viewer may see the poll: a matching share secret,
// being the creator, or any entry on the eligibility roster.
func CanView(p *Poll, viewer User, secret string) bool {
	if secret != "" && secret == p.Secret {
		return true
	}

	if p.CreatedByEmail == viewer.Email {
		return true
	}

	for _, u := range p.Users {
		if u.Email == viewer.Email {
			return true
		}
	}
	return false
}

// CanVote reports whether voter may cast a ballot. The share secret bypasses
// the roster entirely, including the voted guard; that is what link sharing
// means here.
func CanVote(p *Poll, voter User, secret string) bool {
	if p.Status != StatusOpen {
		return false
	}

	if secret != "" && secret == p.Secret {
		return true
	}

	for _, u := range p.Users {
		if u.Email == voter.Email {
			return u.Status == UserEligible
		}
	}
	return false
}
