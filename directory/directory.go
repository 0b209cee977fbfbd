package directory

import (
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pollhive/api.pollhive.dev/poll"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Directory is the static email -> profile mapping, loaded once at startup
// and read-only afterwards.
type Directory struct {
	users   []poll.User
	byEmail map[string]poll.User
}

// Load reads the directory file. A missing file yields an empty directory;
// every lookup then falls back to a synthesized identity.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(nil), nil
	}
	if err != nil {
		return nil, err
	}

	var users []poll.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return New(users), nil
}

func New(users []poll.User) *Directory {
	byEmail := make(map[string]poll.User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	return &Directory{users: users, byEmail: byEmail}
}

func (d *Directory) Lookup(email string) (poll.User, bool) {
	u, ok := d.byEmail[email]
	return u, ok
}

// Users returns a copy of every profile in the directory.
func (d *Directory) Users() []poll.User {
	out := make([]poll.User, len(d.users))
	copy(out, d.users)
	return out
}
