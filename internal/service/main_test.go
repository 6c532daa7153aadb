package service

import (
	"context"
	"os"
	"testing"

	"examgen_backend/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// chatFunc adapts a function to the ChatClient interface for tests.
type chatFunc func(ctx context.Context, model, system, user string) (string, error)

func (f chatFunc) Chat(ctx context.Context, model, system, user string) (string, error) {
	return f(ctx, model, system, user)
}

// scriptedChat replays canned replies in order and records the prompts it saw.
type scriptedChat struct {
	replies []string
	errs    []error
	calls   int
	systems []string
	users   []string
	models  []string
}

func (s *scriptedChat) Chat(ctx context.Context, model, system, user string) (string, error) {
	i := s.calls
	s.calls++
	s.models = append(s.models, model)
	s.systems = append(s.systems, system)
	s.users = append(s.users, user)

	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	if len(s.replies) > 0 {
		return s.replies[len(s.replies)-1], nil
	}
	return "", nil
}
