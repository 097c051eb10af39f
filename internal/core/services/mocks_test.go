package services

import (
	"context"
	"sync"

	"clipgate/internal/core/domain"
)

// fakeTwitch and fakeYouTube stand in for the platform clients.
type fakeTwitch struct {
	streamResult domain.LookupResult
	streamErr    error
	videoResult  domain.LookupResult
	videoErr     error
	streamCalls  int
	videoCalls   int
	lastLogin    string
	lastVideoID  string
}

func (f *fakeTwitch) LookupStream(_ context.Context, login string) (domain.LookupResult, error) {
	f.streamCalls++
	f.lastLogin = login
	return f.streamResult, f.streamErr
}

func (f *fakeTwitch) LookupVideo(_ context.Context, id string) (domain.LookupResult, error) {
	f.videoCalls++
	f.lastVideoID = id
	return f.videoResult, f.videoErr
}

type fakeYouTube struct {
	result      domain.LookupResult
	err         error
	calls       int
	lastVideoID string
}

func (f *fakeYouTube) LookupVideo(_ context.Context, id string) (domain.LookupResult, error) {
	f.calls++
	f.lastVideoID = id
	return f.result, f.err
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (p *recordingPublisher) Publish(event domain.SessionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []domain.SessionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.SessionEvent(nil), p.events...)
}

// recordingMetrics counts recorder calls.
type recordingMetrics struct {
	mu         sync.Mutex
	ingests    map[string]int
	rejections map[string]int
	started    int
	ended      int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		ingests:    make(map[string]int),
		rejections: make(map[string]int),
	}
}

func (m *recordingMetrics) RecordIngest(source domain.SourceType, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingests[string(source)+"/"+outcome]++
}

func (m *recordingMetrics) RecordQuotaRejection(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections[reason]++
}

func (m *recordingMetrics) SessionStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *recordingMetrics) SessionEnded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended++
}
