// Package template provides the small variable-substitution language shared
// by the mock API's synthetic data fetchers and the benchmark client's
// request bodies: {{uuid}}, {{timestamp}}, {{random:N}}, {{random_string:N}},
// and {{date:FORMAT}}.
package template

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	uuidPattern         = regexp.MustCompile(`\{\{uuid\}\}`)
	timestampPattern    = regexp.MustCompile(`\{\{timestamp\}\}`)
	randomPattern       = regexp.MustCompile(`\{\{random:(\d+)\}\}`)
	randomStringPattern = regexp.MustCompile(`\{\{random_string:(\d+)\}\}`)
	datePattern         = regexp.MustCompile(`\{\{date:([^}]+)\}\}`)
)

// Engine substitutes template variables in strings. The zero value is not
// usable; construct with New.
type Engine struct {
	random *rand.Rand
	mu     sync.Mutex
}

// New returns an Engine seeded from seed. Callers that need varied output
// across processes (the benchmark client, one Engine per worker) should
// pass a distinct seed per instance; mockapi's server-side fetchers use a
// fixed seed so renders stay reproducible for the worker/inline equivalence
// property.
func New(seed int64) *Engine {
	return &Engine{random: rand.New(rand.NewSource(seed))}
}

// Process substitutes every recognized variable in input.
func (e *Engine) Process(input string) string {
	if input == "" || !strings.Contains(input, "{{") {
		return input
	}

	result := uuidPattern.ReplaceAllStringFunc(input, func(string) string {
		return e.uuid()
	})
	result = timestampPattern.ReplaceAllStringFunc(result, func(string) string {
		return strconv.FormatInt(time.Now().Unix(), 10)
	})
	result = randomPattern.ReplaceAllStringFunc(result, func(match string) string {
		m := randomPattern.FindStringSubmatch(match)
		n, _ := strconv.Atoi(m[1])
		return e.randomNumber(n)
	})
	result = randomStringPattern.ReplaceAllStringFunc(result, func(match string) string {
		m := randomStringPattern.FindStringSubmatch(match)
		n, _ := strconv.Atoi(m[1])
		return e.randomString(n)
	})
	result = datePattern.ReplaceAllStringFunc(result, func(match string) string {
		m := datePattern.FindStringSubmatch(match)
		return time.Now().Format(m[1])
	})
	return result
}

// ProcessMap applies Process to every value in input, preserving keys.
func (e *Engine) ProcessMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for k, v := range input {
		out[k] = e.Process(v)
	}
	return out
}

func (e *Engine) uuid() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := make([]byte, 16)
	e.random.Read(b)
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return strings.ToLower(
		hex(b[0:4]) + "-" + hex(b[4:6]) + "-" + hex(b[6:8]) + "-" + hex(b[8:10]) + "-" + hex(b[10:16]),
	)
}

func hex(b []byte) string {
	var sb strings.Builder
	for _, v := range b {
		if v < 0x10 {
			sb.WriteByte('0')
		}
		sb.WriteString(strconv.FormatInt(int64(v), 16))
	}
	return sb.String()
}

func (e *Engine) randomNumber(digits int) string {
	if digits <= 0 {
		return ""
	}
	e.mu.Lock()
	n := e.random.Intn(pow10(digits))
	e.mu.Unlock()
	return strconv.Itoa(n)
}

const randomStringCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (e *Engine) randomString(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	e.mu.Lock()
	for i := range b {
		b[i] = randomStringCharset[e.random.Intn(len(randomStringCharset))]
	}
	e.mu.Unlock()
	return string(b)
}

func pow10(n int) int {
	result := 1
	for i := 0; i < n; i++ {
		result *= 10
	}
	return result
}
