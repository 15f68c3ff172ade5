// internal/words/words.go
//
// WordBank: the dictionary the game draws secret words from.
//
// Responsibilities:
//   - Load a word list from a file (one word per line, or a JSON array) or fall
//     back to the embedded default dictionary.
//   - Bucket words by length (4–8) and map levels to a length bucket.
//   - Supply RandomWord, RandomWordExcept, DailyWord, IsValidWord and Stats.
//
// A Bank is built once at startup and shared by reference; it is never
// mutated after construction, so it is safe for concurrent use.

package words

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/robalobadob/wordrush/assets"
	"github.com/robalobadob/wordrush/internal/apperr"
)

const (
	MinLength = 4
	MaxLength = 8
)

// Picker returns an index in [0, n). n is always > 0.
type Picker func(n int) int

// CryptoPicker draws indexes from crypto/rand.
func CryptoPicker(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}

// Bank holds the dictionary bucketed by word length.
type Bank struct {
	buckets map[int][]string    // length → words, sorted
	valid   map[string]struct{} // every accepted word
	pick    Picker
}

// Option configures a Bank.
type Option func(*Bank)

// WithPicker replaces the random index source (tests use a fixed picker).
func WithPicker(p Picker) Option {
	return func(b *Bank) { b.pick = p }
}

// New builds a Bank from a raw list. Words are lower-cased and trimmed;
// anything that is not 4–8 letters a–z is dropped, as are duplicates.
func New(list []string, opts ...Option) *Bank {
	b := &Bank{
		buckets: make(map[int][]string),
		valid:   make(map[string]struct{}),
		pick:    CryptoPicker,
	}
	for _, o := range opts {
		o(b)
	}
	for _, raw := range list {
		w := Normalize(raw)
		if !IsWellFormed(w) {
			continue
		}
		if _, dup := b.valid[w]; dup {
			continue
		}
		b.valid[w] = struct{}{}
		b.buckets[len(w)] = append(b.buckets[len(w)], w)
	}
	for _, ws := range b.buckets {
		sort.Strings(ws)
	}
	return b
}

// Load reads the dictionary at path, or the embedded default if path is empty.
// Files ending in .json must hold a JSON array of strings; anything else is
// read one word per line ('#' starts a comment line).
func Load(path string, opts ...Option) (*Bank, error) {
	var (
		list []string
		err  error
	)
	switch {
	case path == "":
		list, err = assets.DefaultWords()
	case strings.HasSuffix(strings.ToLower(path), ".json"):
		list, err = readJSONFile(path)
	default:
		list, err = readWordFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	b := New(list, opts...)
	if len(b.valid) == 0 {
		return nil, fmt.Errorf("load words: %w", apperr.ErrNoWordsAvailable)
	}
	return b, nil
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

func readJSONFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// Normalize lower-cases and trims a candidate word.
func Normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// IsWellFormed reports whether w is 4–8 lowercase ASCII letters.
func IsWellFormed(w string) bool {
	if len(w) < MinLength || len(w) > MaxLength {
		return false
	}
	return isAlpha(w)
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// LengthForLevel maps a level to its word length bucket.
func LengthForLevel(level int) int {
	switch {
	case level <= 3:
		return 4
	case level <= 6:
		return 5
	case level <= 9:
		return 6
	case level <= 12:
		return 7
	default:
		return 8
	}
}

// RandomWord draws a uniformly random word for the level's length bucket.
func (b *Bank) RandomWord(level int) (string, error) {
	ws := b.buckets[LengthForLevel(level)]
	if len(ws) == 0 {
		return "", apperr.ErrNoWordsAvailable
	}
	return ws[b.pick(len(ws))], nil
}

// RandomWordExcept draws like RandomWord but never returns except. A bucket
// holding no other word fails with ErrNoWordsAvailable.
func (b *Bank) RandomWordExcept(level int, except string) (string, error) {
	except = Normalize(except)
	ws := b.buckets[LengthForLevel(level)]
	i := sort.SearchStrings(ws, except)
	if i < len(ws) && ws[i] == except {
		ws = append(ws[:i:i], ws[i+1:]...)
	}
	if len(ws) == 0 {
		return "", apperr.ErrNoWordsAvailable
	}
	return ws[b.pick(len(ws))], nil
}

// DailyWord returns the deterministic word for a UTC day, so every replica
// that races to create the day's challenge proposes the same word.
func (b *Bank) DailyWord(day time.Time, salt string, level int) (string, error) {
	ws := b.buckets[LengthForLevel(level)]
	if len(ws) == 0 {
		return "", apperr.ErrNoWordsAvailable
	}
	return ws[DailyIndex(day, salt, len(ws))], nil
}

// DailyIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func DailyIndex(day time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(day.UTC().Format("2006-01-02")))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// IsValidWord reports whether w is in the dictionary (case-insensitive).
func (b *Bank) IsValidWord(w string) bool {
	_, ok := b.valid[Normalize(w)]
	return ok
}

// Stats returns the number of loaded words per length.
func (b *Bank) Stats() map[int]int {
	out := make(map[int]int, len(b.buckets))
	for n, ws := range b.buckets {
		out[n] = len(ws)
	}
	return out
}
