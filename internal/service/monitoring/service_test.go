package monitoring

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *documentstore.MemoryStore) {
	t.Helper()
	store := documentstore.NewMemoryStore()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	svc := NewService(zaptest.NewLogger(t), store, DefaultConfig(), opts...)
	return svc, store
}
