package trip

import (
	"context"
	"strings"
	"sync"

	"trippy/internal/ai"
)

// stubLLM scripts model replies by prompt substring, in rule order. The
// composer calls it from concurrent research goroutines, so recording is
// mutex-guarded like stubSearcher's.
type stubLLM struct {
	mu    sync.Mutex
	rules []stubRule
	calls []string
	err   error
}

type stubRule struct {
	contains string
	reply    string
	err      error
}

func (s *stubLLM) answer(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, prompt)
	if s.err != nil {
		return "", s.err
	}
	for _, r := range s.rules {
		if strings.Contains(prompt, r.contains) {
			return r.reply, r.err
		}
	}
	return "OK", nil
}

func (s *stubLLM) Infer(_ context.Context, prompt string) (string, error) {
	return s.answer(prompt)
}

func (s *stubLLM) InferMessages(_ context.Context, _ []ai.Message, prompt string) (string, error) {
	return s.answer(prompt)
}

var _ ai.Inferencer = (*stubLLM)(nil)
