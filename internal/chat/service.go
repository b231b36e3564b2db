package chat

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/chatterbox/internal/brain"
	"github.com/ent0n29/chatterbox/internal/memory"
	"github.com/ent0n29/chatterbox/internal/observability"
	"github.com/ent0n29/chatterbox/internal/sentiment"
)

// EmptyInputReply answers whitespace-only messages without touching
// history or any store.
const EmptyInputReply = "Please type something!"

// fallbackReplies are substituted when the AI responder fails; the
// failure never reaches the caller.
var fallbackReplies = []string{
	"I'm here to chat",
	"Tell me more!",
	"I'm listening",
	"Let's keep talking",
	"Sorry, my AI brain is a bit tired right now!",
	"Hmm, something's not working, but I'm still here for you!",
	"Oops, AI hiccup! But I'm still here to chat!",
	"Sorry, I'm having a little trouble thinking right now, but I'm all ears!",
}

// Matcher answers scripted intents.
type Matcher interface {
	Match(message string) (string, bool)
}

// Learner records flagged user statements.
type Learner interface {
	MaybeLearn(userMsg string) (bool, error)
}

// Classifier buckets a message into a mood.
type Classifier interface {
	Classify(text string) sentiment.Mood
}

// Result is the outcome of one exchange. History is nil only for the
// handler-level crash shape, never from Exchange itself.
type Result struct {
	Response string
	History  []brain.Turn
}

// Service runs the chat pipeline: validate, match intent, classify
// sentiment, pick a response source, prefix, persist.
type Service struct {
	matcher    Matcher
	classifier Classifier
	responder  brain.Responder
	memory     memory.Store
	knowledge  Learner
	metrics    *observability.Metrics

	contextWindow  int
	requestTimeout time.Duration
	offlineBrain   bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Options wires the service's collaborators.
type Options struct {
	Matcher        Matcher
	Classifier     Classifier
	Responder      brain.Responder
	Memory         memory.Store
	Knowledge      Learner
	Metrics        *observability.Metrics
	ContextWindow  int
	RequestTimeout time.Duration
	// Rand picks among fallback replies; pass a seeded source for
	// deterministic tests, or nil for the default source.
	Rand *rand.Rand
}

func NewService(opts Options) *Service {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = 5
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	_, offline := opts.Responder.(*brain.OfflineResponder)
	return &Service{
		matcher:        opts.Matcher,
		classifier:     opts.Classifier,
		responder:      opts.Responder,
		memory:         opts.Memory,
		knowledge:      opts.Knowledge,
		metrics:        opts.Metrics,
		contextWindow:  opts.ContextWindow,
		requestTimeout: opts.RequestTimeout,
		offlineBrain:   offline,
		rng:            opts.Rand,
	}
}

// Exchange handles one user message against the caller-supplied
// history and returns the final response plus the updated history.
func (s *Service) Exchange(ctx context.Context, message string, history []brain.Turn) Result {
	started := time.Now()
	exchangeID := uuid.NewString()

	if strings.TrimSpace(message) == "" {
		return Result{Response: EmptyInputReply, History: history}
	}

	// Never mutate the caller's slice in place.
	updated := make([]brain.Turn, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated, brain.Turn{Role: brain.RoleUser, Content: message})

	if s.knowledge != nil {
		learned, err := s.knowledge.MaybeLearn(message)
		if err != nil {
			log.Printf("exchange %s: knowledge store write failed: %v", exchangeID, err)
		}
		if learned && s.metrics != nil {
			s.metrics.FactsLearned.Inc()
		}
	}

	mood := s.classifier.Classify(message)
	if s.metrics != nil {
		s.metrics.SentimentMoods.WithLabelValues(string(mood)).Inc()
	}

	response, source := s.selectResponse(ctx, exchangeID, message, updated)
	response = mood.Prefix() + response

	updated = append(updated, brain.Turn{Role: brain.RoleAssistant, Content: response})

	if err := s.memory.Record(ctx, message, response); err != nil {
		// The reply is already composed; losing one memory record beats
		// failing the whole request.
		log.Printf("exchange %s: memory store write failed: %v", exchangeID, err)
	}

	if s.metrics != nil {
		s.metrics.ChatRequests.WithLabelValues(source).Inc()
		s.metrics.ObserveExchangeLatency(time.Since(started))
	}

	return Result{Response: response, History: updated}
}

// selectResponse picks the reply source: intent match verbatim, else
// the AI responder, else a canned fallback when the responder fails.
func (s *Service) selectResponse(ctx context.Context, exchangeID, message string, history []brain.Turn) (string, string) {
	if reply, ok := s.matcher.Match(message); ok {
		return reply, "intent"
	}

	recent, err := s.memory.Recent(ctx, s.contextWindow)
	if err != nil {
		log.Printf("exchange %s: recent context unavailable: %v", exchangeID, err)
	}

	respondCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	reply, err := s.responder.Respond(respondCtx, history, recent)
	if err != nil {
		log.Printf("exchange %s: responder error: %v", exchangeID, err)
		if s.metrics != nil {
			s.metrics.ResponderErrors.Inc()
		}
		return s.pickFallback(), "fallback"
	}

	if s.offlineBrain {
		return reply, "offline"
	}
	return reply, "ai"
}

func (s *Service) pickFallback() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return fallbackReplies[s.rng.Intn(len(fallbackReplies))]
}

// FallbackReplies exposes the canned fallback set for tests.
func FallbackReplies() []string {
	out := make([]string, len(fallbackReplies))
	copy(out, fallbackReplies)
	return out
}
