package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// TimestampLayout is fixed-width so lexicographic order equals chronological order
const TimestampLayout = "2006-01-02T15:04:05.000000"

const (
	minResponseTimeMs = 5
	maxResponseTimeMs = 2000

	internalErrorMessage = "Request failed with internal server error: database connection timeout"
)

// LogEntry is one synthesized record
type LogEntry struct {
	Timestamp      string `json:"timestamp"`
	Level          string `json:"level"`
	Service        string `json:"service"`
	RequestID      string `json:"request_id"`
	HTTPMethod     string `json:"http_method"`
	Endpoint       string `json:"endpoint"`
	StatusCode     int    `json:"status_code"`
	ResponseTimeMs int    `json:"response_time_ms"`
	ClientIP       string `json:"client_ip"`
	UserAgent      string `json:"user_agent"`
	Message        string `json:"message"`
}

// Synthesizer draws log entries from a catalog. It is not safe for
// concurrent use; give each goroutine its own.
type Synthesizer struct {
	catalog Catalog
	faker   *gofakeit.Faker

	levelCum  []float64
	statusCum []float64
}

// New creates a Synthesizer over a validated catalog. A zero seed picks a
// random one; any other seed makes the sequence of entries reproducible.
func New(catalog Catalog, seed int64) *Synthesizer {
	levelWeights := make([]float64, len(catalog.Levels))
	for i, l := range catalog.Levels {
		levelWeights[i] = l.Weight
	}
	statusWeights := make([]float64, len(catalog.StatusCodes))
	for i, s := range catalog.StatusCodes {
		statusWeights[i] = s.Weight
	}

	return &Synthesizer{
		catalog:   catalog,
		faker:     gofakeit.New(seed),
		levelCum:  cumulate(levelWeights),
		statusCum: cumulate(statusWeights),
	}
}

// Catalog returns the tables this synthesizer draws from
func (s *Synthesizer) Catalog() Catalog {
	return s.catalog
}

// Rand exposes the underlying random source so callers can draw timestamps
// from the same stream.
func (s *Synthesizer) Rand() *rand.Rand {
	return s.faker.Rand
}

// Synthesize builds a random entry stamped with ts
func (s *Synthesizer) Synthesize(ts time.Time) LogEntry {
	r := s.faker.Rand

	level := s.catalog.Levels[weightedIndex(r, s.levelCum)].Value
	service := s.catalog.Services[r.Intn(len(s.catalog.Services))]
	method := s.catalog.Methods[r.Intn(len(s.catalog.Methods))]
	endpoint := s.catalog.Endpoints[r.Intn(len(s.catalog.Endpoints))]
	status := s.catalog.StatusCodes[weightedIndex(r, s.statusCum)].Value
	responseTime := minResponseTimeMs + r.Intn(maxResponseTimeMs-minResponseTimeMs+1)

	entry := LogEntry{
		Timestamp:      ts.Format(TimestampLayout),
		Level:          level,
		Service:        service,
		RequestID:      s.requestID(),
		HTTPMethod:     method,
		Endpoint:       endpoint,
		StatusCode:     status,
		ResponseTimeMs: responseTime,
		ClientIP:       s.faker.IPv4Address(),
		UserAgent:      s.faker.UserAgent(),
	}
	entry.Message = deriveMessage(entry, s.sentence)

	return entry
}

func (s *Synthesizer) requestID() string {
	id, err := uuid.NewRandomFromReader(s.faker.Rand)
	if err != nil {
		// math/rand never fails a read
		return uuid.NewString()
	}
	return id.String()
}

func (s *Synthesizer) sentence() string {
	return s.faker.Sentence(6 + s.faker.Rand.Intn(5))
}

// deriveMessage applies the message rules in order; the first match wins.
// sentence is only called for client errors.
func deriveMessage(e LogEntry, sentence func() string) string {
	switch {
	case e.Level == LevelError && e.StatusCode >= 500:
		return internalErrorMessage
	case e.Level == LevelError || e.StatusCode >= 400:
		return "Request failed with client error: " + sentence()
	case e.Level == LevelWarn:
		return fmt.Sprintf("Performance warning: operation took %dms which exceeds threshold", e.ResponseTimeMs)
	default:
		return fmt.Sprintf("Successfully processed %s request to %s", e.HTTPMethod, e.Endpoint)
	}
}
