// internal/words/words.go
//
// Dictionary for the game engine.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or fall back to the embedded defaults.
//   - Maintain sets for quick lookups (answers only, answers ∪ allowed).
//   - Draw random answers through an injected random source.
//
// Load behavior:
//  1. answersFile and allowedFile both set: answers from the first, extra guesses from the second.
//  2. only allowedFile set: that file serves as both lists.
//  3. neither set: embedded assets/answers.txt and assets/allowed.txt.
//
// Words are five letters A–Z and stored uppercase. Anything else is skipped.
package words

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lvyin1122/wordle/assets"
	"github.com/lvyin1122/wordle/internal/game"
)

// ErrEmpty is returned when no usable answer word was loaded.
var ErrEmpty = errors.New("words: answers list is empty")

// Dictionary is an immutable pair of word lists. Safe for concurrent use.
type Dictionary struct {
	answers    []string
	answersSet map[string]struct{}
	allowedSet map[string]struct{} // answers ∪ allowed
}

// New builds a Dictionary from raw lists. Entries are normalized and filtered;
// duplicates are dropped while keeping first-seen order.
func New(answers, allowed []string) (*Dictionary, error) {
	d := &Dictionary{
		answersSet: make(map[string]struct{}, len(answers)),
		allowedSet: make(map[string]struct{}, len(answers)+len(allowed)),
	}
	for _, raw := range answers {
		w, ok := normalize(raw)
		if !ok {
			continue
		}
		if _, dup := d.answersSet[w]; dup {
			continue
		}
		d.answersSet[w] = struct{}{}
		d.allowedSet[w] = struct{}{}
		d.answers = append(d.answers, w)
	}
	for _, raw := range allowed {
		if w, ok := normalize(raw); ok {
			d.allowedSet[w] = struct{}{}
		}
	}
	if len(d.answers) == 0 {
		return nil, ErrEmpty
	}
	return d, nil
}

// Load reads the lists as described in the package comment.
func Load(answersFile, allowedFile string) (*Dictionary, error) {
	switch {
	case answersFile != "" && allowedFile != "":
		ans, err := readWordFile(answersFile)
		if err != nil {
			return nil, err
		}
		allow, err := readWordFile(allowedFile)
		if err != nil {
			return nil, err
		}
		return New(ans, allow)

	case allowedFile != "":
		allow, err := readWordFile(allowedFile)
		if err != nil {
			return nil, err
		}
		return New(allow, nil)

	default:
		ans, err := assets.AnswersList()
		if err != nil {
			return nil, fmt.Errorf("embedded answers: %w", err)
		}
		allow, err := assets.AllowedList()
		if err != nil {
			return nil, fmt.Errorf("embedded allowed: %w", err)
		}
		return New(ans, allow)
	}
}

// readWordFile loads one word per line. Filtering happens in New.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

func normalize(raw string) (string, bool) {
	w := strings.ToUpper(strings.TrimSpace(raw))
	if len(w) != game.WordLength {
		return "", false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return "", false
		}
	}
	return w, true
}

// Answers returns a copy of the answer list in load order.
func (d *Dictionary) Answers() []string {
	return append([]string(nil), d.answers...)
}

// Allowed returns every accepted guess, sorted.
func (d *Dictionary) Allowed() []string {
	out := make([]string, 0, len(d.allowedSet))
	for w := range d.allowedSet {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether w (already uppercase) is an accepted guess.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.allowedSet[w]
	return ok
}

// IsAnswer reports whether w is in the answer list.
func (d *Dictionary) IsAnswer(w string) bool {
	_, ok := d.answersSet[w]
	return ok
}

// Random draws a uniformly random answer.
func (d *Dictionary) Random(rng game.Rand) string {
	return d.answers[rng.IntN(len(d.answers))]
}

// Stats returns the number of answers and accepted guesses.
func (d *Dictionary) Stats() (answersCount, allowedCount int) {
	return len(d.answers), len(d.allowedSet)
}
