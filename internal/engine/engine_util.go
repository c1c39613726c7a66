package engine

import (
	"math/rand/v2"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/questions"
)

type Option func(*sessionOptions)

type sessionOptions struct {
	rng *rand.Rand
}

// WithRand fixes the shuffle source, mostly for tests.
func WithRand(rng *rand.Rand) Option {
	return func(o *sessionOptions) { o.rng = rng }
}

func NewSession(bank []questions.Question, opts ...Option) *Session {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Session{
		Questions: bank,
		Order:     NewQuestionOrder(len(bank), o.rng),
		Queue:     &BuzzerQueue{},
		Answers:   NewAnswerBoard(),
		Names:     NewRegistry(),
		Players:   map[ConnID]*Player{},
		Roles:     map[ConnID]Role{},
	}
}

func (s *Session) CurrentQuestion() (questions.Question, bool) {
	i, ok := s.Order.Current()
	if !ok {
		return questions.Question{}, false
	}
	return s.Questions[i], true
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
