package poll

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

type ChoiceType string

const (
	ChoiceSingle   ChoiceType = "SINGLE"
	ChoiceMultiple ChoiceType = "MULTIPLE"
)

func (c ChoiceType) Valid() bool {
	switch c {
	case ChoiceSingle, ChoiceMultiple:
		return true
	}
	return false
}

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed:
		return true
	}
	return false
}

type UserStatus string

const (
	UserEligible UserStatus = "ELIGIBLE"
	UserVoted    UserStatus = "VOTED"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserEligible, UserVoted:
		return true
	}
	return false
}

type ColorScheme string

const (
	ColorRed     ColorScheme = "RED"
	ColorOrange  ColorScheme = "ORANGE"
	ColorAmber   ColorScheme = "AMBER"
	ColorYellow  ColorScheme = "YELLOW"
	ColorLime    ColorScheme = "LIME"
	ColorGreen   ColorScheme = "GREEN"
	ColorTeal    ColorScheme = "TEAL"
	ColorCyan    ColorScheme = "CYAN"
	ColorSky     ColorScheme = "SKY"
	ColorBlue    ColorScheme = "BLUE"
	ColorIndigo  ColorScheme = "INDIGO"
	ColorViolet  ColorScheme = "VIOLET"
	ColorPurple  ColorScheme = "PURPLE"
	ColorFuchsia ColorScheme = "FUCHSIA"
	ColorPink    ColorScheme = "PINK"
	ColorRose    ColorScheme = "ROSE"
	ColorSlate   ColorScheme = "SLATE"
	ColorGray    ColorScheme = "GRAY"
	ColorZinc    ColorScheme = "ZINC"
	ColorNeutral ColorScheme = "NEUTRAL"
	ColorStone   ColorScheme = "STONE"
)

func (c ColorScheme) Valid() bool {
	switch c {
	case ColorRed, ColorOrange, ColorAmber, ColorYellow, ColorLime, ColorGreen,
		ColorTeal, ColorCyan, ColorSky, ColorBlue, ColorIndigo, ColorViolet,
		ColorPurple, ColorFuchsia, ColorPink, ColorRose, ColorSlate, ColorGray,
		ColorZinc, ColorNeutral, ColorStone:
		return true
	}
	return false
}

// User is a verified identity, either resolved from the directory or
// synthesized from a bare email.
type User struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	ImageURL *string `json:"image_url"`
}

// PollUser is one entry of a poll's eligibility roster.
type PollUser struct {
	User
	Status UserStatus `json:"status"`
}

// Meta holds the fields persisted in a poll's meta hash plus the id the hash
// key is derived from. Everything except Title and Status is immutable after
// creation.
type Meta struct {
	ID             string      `json:"id"`
	Secret         string      `json:"secret"`
	CreatedAt      time.Time   `json:"created_at"`
	CreatedByEmail string      `json:"created_by_email"`
	Title          string      `json:"title"`
	ChoiceType     ChoiceType  `json:"choice_type"`
	ColorScheme    ColorScheme `json:"color_scheme"`
	Status         Status      `json:"status"`
}

// Poll is the full aggregate reconstructed by a repository read. Results is
// nil unless the poll is closed.
type Poll struct {
	Meta
	Options   []string       `json:"options"`
	CreatedBy User           `json:"created_by"`
	Users     []PollUser     `json:"users"`
	Results   map[string]int `json:"results,omitempty"`
}

// HideSecretFrom blanks the share secret unless email belongs to the creator.
// Every poll leaving the service to a non-creator goes through this.
func (p *Poll) HideSecretFrom(email string) {
	if p.CreatedByEmail != email {
		p.Secret = ""
	}
}

// Draft is the creation input for a poll.
type Draft struct {
	Title       string      `json:"title"`
	Options     []string    `json:"options"`
	ChoiceType  ChoiceType  `json:"choice_type"`
	ColorScheme ColorScheme `json:"color_scheme"`
}

// Validate aggregates every input problem into a single ValidationError.
func (d Draft) Validate() error {
	v := &ValidationError{}

	if strings.TrimSpace(d.Title) == "" {
		v.add("title", "title is required")
	}

	if len(d.Options) == 0 {
		v.add("options", "at least one option is required")
	}
	seen := make(map[string]struct{}, len(d.Options))
	for _, o := range d.Options {
		if o == "" {
			v.add("options", "options must not be empty")
			continue
		}
		if _, dup := seen[o]; dup {
			v.add("options", fmt.Sprintf("duplicate option %q", o))
			continue
		}
		seen[o] = struct{}{}
	}

	if !d.ChoiceType.Valid() {
		v.add("choice_type", fmt.Sprintf("unknown choice type %q", string(d.ChoiceType)))
	}
	if !d.ColorScheme.Valid() {
		v.add("color_scheme", fmt.Sprintf("unknown color scheme %q", string(d.ColorScheme)))
	}

	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

// Directory resolves emails to display profiles. Implementations are
// read-only after construction.
type Directory interface {
	Lookup(email string) (User, bool)
}

const secretAlphabet = "abcdefghijklmnopqrstuvwxyz"

// GenerateSecret returns a fresh share token of the form xxx-xxxx-xxx.
func GenerateSecret() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = secretAlphabet[int(b[i])%len(secretAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", b[:3], b[3:7], b[7:])
}
