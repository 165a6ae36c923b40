// Package envfile reads the deployment's KEY=VALUE environment file.
//
// Parsing follows dotenv conventions: the first '=' delimits key from value,
// surrounding quotes are stripped, and when a key appears more than once the
// last assignment wins. A missing file yields an empty Source rather than an
// error; callers decide whether an absent key is fatal.
package envfile

import (
	"os"
	"sort"

	"github.com/subosito/gotenv"
)

// Source is an immutable view over the key-value pairs of one env file.
type Source struct {
	values map[string]string
}

// Load reads the env file at path. A missing or unreadable file yields an
// empty Source.
func Load(path string) Source {
	f, err := os.Open(path)
	if err != nil {
		return Source{}
	}
	defer f.Close()

	return Source{values: gotenv.Parse(f)}
}

// Get returns the value for key and whether it was present.
func (s Source) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Require returns the sorted subset of keys that are absent or empty.
func (s Source) Require(keys ...string) []string {
	var missing []string
	for _, k := range keys {
		if v, ok := s.values[k]; !ok || v == "" {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}

// Len returns the number of keys loaded.
func (s Source) Len() int {
	return len(s.values)
}
