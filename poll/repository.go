package poll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pollhive/api.pollhive.dev/redis"
)

const (
	// closeAfterDays and deleteAfterDays drive the read-triggered
	// auto-transitions; no background sweeper exists.
	closeAfterDays  = 7
	deleteAfterDays = 30

	scanCount = 100
)

// Repository reads and writes poll aggregates through the key space. Every
// read is self-healing: it applies pending schema migrations and the
// age-based auto-transitions before returning.
type Repository struct {
	rdb *redis.Client
	dir Directory

	// clock is swapped in tests to age polls.
	clock func() time.Time
}

func NewRepository(rdb *redis.Client, dir Directory) *Repository {
	return &Repository{
		rdb:   rdb,
		dir:   dir,
		clock: time.Now,
	}
}

// Create persists a new poll from a validated draft. Meta, options and the
// creator's eligibility record go out in one pipeline so a reader never sees
// meta without options.
func (r *Repository) Create(ctx context.Context, draft Draft, creator User) (*Poll, error) {
	id := uuid.NewString()
	meta := Meta{
		ID:             id,
		Secret:         GenerateSecret(),
		CreatedAt:      r.clock().UTC(),
		CreatedByEmail: creator.Email,
		Title:          draft.Title,
		ChoiceType:     draft.ChoiceType,
		ColorScheme:    draft.ColorScheme,
		Status:         StatusOpen,
	}

	options := make([]interface{}, len(draft.Options))
	for i, o := range draft.Options {
		options[i] = o
	}

	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, metaKey(id), encodeMeta(meta))
	pipe.RPush(ctx, optionsKey(id), options...)
	pipe.Set(ctx, userKey(id, creator.Email), string(UserEligible), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return r.Fetch(ctx, id)
}

// Fetch reconstructs the aggregate for id, or returns ErrNotFound. In order
// it applies schema migration, the age-based purge, and the age-based close;
// results are recounted only for closed polls.
func (r *Repository) Fetch(ctx context.Context, id string) (*Poll, error) {
	raw, err := r.rdb.HGetAll(ctx, metaKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	meta, mig, err := decodeMeta(id, raw)
	if err != nil {
		return nil, err
	}
	if err := r.applyMigration(ctx, id, mig); err != nil {
		return nil, err
	}

	// purge before close, otherwise the close branch shadows it forever
	age := r.ageDays(meta.CreatedAt)
	if age >= deleteAfterDays {
		if err := r.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	if age >= closeAfterDays && meta.Status != StatusClosed {
		meta.Status = StatusClosed
		if err := r.rdb.HSet(ctx, metaKey(id), "status", string(StatusClosed)).Err(); err != nil {
			return nil, err
		}
	}

	options, err := r.rdb.LRange(ctx, optionsKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	users, err := r.pollUsers(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &Poll{
		Meta:      meta,
		Options:   options,
		CreatedBy: r.resolve(meta.CreatedByEmail),
		Users:     users,
	}

	if meta.Status == StatusClosed {
		p.Results, err = r.Tally(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// ListAll fetches every poll in the store, newest first. Polls purged by
// their own fetch are skipped.
func (r *Repository) ListAll(ctx context.Context) ([]*Poll, error) {
	var polls []*Poll

	iter := r.rdb.Scan(ctx, 0, allMetaKeys, scanCount).Iterator()
	for iter.Next(ctx) {
		if !isMetaKey(iter.Val()) {
			continue
		}
		p, err := r.Fetch(ctx, pollIDFromMetaKey(iter.Val()))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Slice(polls, func(i, j int) bool {
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})
	return polls, nil
}

// SetEligible grants eligibility to each email that has no record yet. SETNX
// keeps it from ever downgrading a VOTED record.
func (r *Repository) SetEligible(ctx context.Context, id string, emails []string) error {
	pipe := r.rdb.Pipeline()
	for _, email := range emails {
		if email == "" {
			continue
		}
		pipe.SetNX(ctx, userKey(id, email), string(UserEligible), 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RecordVote writes one ballot per distinct value and flips the voter's
// record to VOTED, all in one transaction. Values outside the poll's options
// are rejected before anything is written.
//
// Unless viaSecret is set, the voter's record is re-checked under WATCH so
// two overlapping votes from the same email cannot both land; the loser gets
// ErrVoteConflict.
func (r *Repository) RecordVote(ctx context.Context, id, email string, values []string, viaSecret bool) error {
	options, err := r.rdb.LRange(ctx, optionsKey(id), 0, -1).Result()
	if err != nil {
		return err
	}
	allowed := make(map[string]struct{}, len(options))
	for _, o := range options {
		allowed[o] = struct{}{}
	}

	distinct := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := allowed[v]; !ok {
			return newValidationError("values", fmt.Sprintf("%q is not an option of this poll", v))
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}

	statusKey := userKey(id, email)

	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		if !viaSecret {
			status, err := tx.Get(ctx, statusKey).Result()
			if err != nil && err != redis.ErrNil {
				return err
			}
			if err == redis.ErrNil || UserStatus(status) != UserEligible {
				return ErrVoteConflict
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, v := range distinct {
				pipe.Set(ctx, ballotKey(id, uuid.NewString()), v, 0)
			}
			pipe.Set(ctx, statusKey, string(UserVoted), 0)
			return nil
		})
		return err
	}, statusKey)

	if err == redis.TxFailedErr {
		return ErrVoteConflict
	}
	return err
}

// SetStatus overwrites the status field of the meta hash.
func (r *Repository) SetStatus(ctx context.Context, id string, status Status) error {
	return r.rdb.HSet(ctx, metaKey(id), "status", string(status)).Err()
}

// Delete removes every key belonging to the poll.
func (r *Repository) Delete(ctx context.Context, id string) error {
	var keys []string

	iter := r.rdb.Scan(ctx, 0, pollKeyPattern(id), scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

func (r *Repository) applyMigration(ctx context.Context, id string, mig migration) error {
	if mig.empty() {
		return nil
	}
	if len(mig.drop) > 0 {
		if err := r.rdb.HDel(ctx, metaKey(id), mig.drop...).Err(); err != nil {
			return err
		}
	}
	if len(mig.set) > 0 {
		if err := r.rdb.HSet(ctx, metaKey(id), mig.set).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) pollUsers(ctx context.Context, id string) ([]PollUser, error) {
	var users []PollUser

	iter := r.rdb.Scan(ctx, 0, userKeyPattern(id), scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		status, err := r.rdb.Get(ctx, key).Result()
		if err == redis.ErrNil {
			// deleted between scan and read
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, PollUser{
			User:   r.resolve(emailFromUserKey(key)),
			Status: UserStatus(status),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Email < users[j].Email
	})
	return users, nil
}

// resolve looks the email up in the directory, synthesizing a bare identity
// on a miss. A directory miss is never an error.
func (r *Repository) resolve(email string) User {
	if u, ok := r.dir.Lookup(email); ok {
		return u
	}
	return User{Name: email, Email: email}
}

func (r *Repository) ageDays(createdAt time.Time) int {
	return int(r.clock().UTC().Sub(createdAt).Hours() / 24)
}
