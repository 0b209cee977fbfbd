package poll

// The key space of one poll with id P:
//
//	P:meta            hash of Meta fields
//	P:options         list of option strings, creation order
//	P:users:{email}   eligibility status string
//	P:votes:{ballot}  voted option string
//
// Nothing outside this file knows the physical layout.

import (
	"fmt"
	"strings"
	"time"
)

const (
	metaSuffix    = ":meta"
	optionsSuffix = ":options"
	usersInfix    = ":users:"
	votesInfix    = ":votes:"

	// allMetaKeys matches the meta hash of every poll in the store.
	allMetaKeys = "*" + metaSuffix
)

func metaKey(id string) string {
	return id + metaSuffix
}

func optionsKey(id string) string {
	return id + optionsSuffix
}

func userKey(id, email string) string {
	return id + usersInfix + email
}

func ballotKey(id, ballotID string) string {
	return id + votesInfix + ballotID
}

func userKeyPattern(id string) string {
	return id + usersInfix + "*"
}

func ballotKeyPattern(id string) string {
	return id + votesInfix + "*"
}

// pollKeyPattern matches every key belonging to the poll, for purges.
func pollKeyPattern(id string) string {
	return id + ":*"
}

func pollIDFromMetaKey(key string) string {
	return strings.TrimSuffix(key, metaSuffix)
}

// isMetaKey reports whether a scan hit for allMetaKeys really is a meta hash.
// An eligibility or ballot key whose last segment is literally "meta" ends in
// ":meta" too and must not be mistaken for a poll.
func isMetaKey(key string) bool {
	return strings.HasSuffix(key, metaSuffix) &&
		!strings.Contains(key, usersInfix) &&
		!strings.Contains(key, votesInfix)
}

// emailFromUserKey recovers the email component of an eligibility key.
func emailFromUserKey(key string) string {
	return key[strings.LastIndexByte(key, ':')+1:]
}

const createdAtLayout = time.RFC3339Nano

// migration is the set of storage fixups a decode discovered: retired hash
// fields to drop and current-schema fields to backfill.
type migration struct {
	drop []string
	set  map[string]interface{}
}

func (m migration) empty() bool {
	return len(m.drop) == 0 && len(m.set) == 0
}

// retiredMetaFields were written by earlier deployments and are removed both
// from storage and from the decoded aggregate.
var retiredMetaFields = []string{"access_type"}

// encodeMeta lays Meta out as the field map of the poll's meta hash. The id
// is carried by the key, not the hash.
func encodeMeta(m Meta) map[string]interface{} {
	return map[string]interface{}{
		"secret":           m.Secret,
		"created_at":       m.CreatedAt.UTC().Format(createdAtLayout),
		"created_by_email": m.CreatedByEmail,
		"title":            m.Title,
		"choice_type":      string(m.ChoiceType),
		"color_scheme":     string(m.ColorScheme),
		"status":           string(m.Status),
	}
}

// decodeMeta rebuilds Meta from a raw hash and reports the migration the
// stored record still needs. It is pure: the caller applies the migration to
// the store.
func decodeMeta(id string, raw map[string]string) (Meta, migration, error) {
	mig := migration{}

	for _, field := range retiredMetaFields {
		if _, ok := raw[field]; ok {
			mig.drop = append(mig.drop, field)
		}
	}

	secret, ok := raw["secret"]
	if !ok || secret == "" {
		// records created before share links existed
		secret = GenerateSecret()
		mig.set = map[string]interface{}{"secret": secret}
	}

	createdAt, err := time.Parse(time.RFC3339, raw["created_at"])
	if err != nil {
		return Meta{}, migration{}, fmt.Errorf("poll %s: bad created_at %q: %w", id, raw["created_at"], err)
	}

	return Meta{
		ID:             id,
		Secret:         secret,
		CreatedAt:      createdAt,
		CreatedByEmail: raw["created_by_email"],
		Title:          raw["title"],
		ChoiceType:     ChoiceType(raw["choice_type"]),
		ColorScheme:    ColorScheme(raw["color_scheme"]),
		Status:         Status(raw["status"]),
	}, mig, nil
}
