package poll

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
)

type staticDirectory map[string]User

func (d staticDirectory) Lookup(email string) (User, bool) {
	u, ok := d[email]
	return u, ok
}

func newTestRepository(t *testing.T, dir Directory) (*Repository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	if dir == nil {
		dir = staticDirectory{}
	}
	return NewRepository(rdb, dir), mr
}

func testDraft() Draft {
	return Draft{
		Title:       "Lunch",
		Options:     []string{"Pizza", "Sushi"},
		ChoiceType:  ChoiceSingle,
		ColorScheme: ColorBlue,
	}
}

func keysWithPrefix(mr *miniredis.Miniredis, prefix string) []string {
	var keys []string
	for _, k := range mr.Keys() {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys
}
