package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/kafka"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestCollectorPublishesTrackedEvents(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 10)
	c.Start(context.Background())

	c.Track(SearchEvent{Type: EventSearch, Query: "dog", Fingerprint: "abc"})
	c.Track(SearchEvent{Type: EventZeroResult, Query: "unicorn", Fingerprint: "abc"})
	c.Close()

	assert.Equal(t, 2, pub.count())
	assert.Equal(t, "abc", pub.events[0].Key)
	assert.Equal(t, "search", pub.events[0].Type)
	assert.Equal(t, "zero_result", pub.events[1].Type)
	assert.Equal(t, "dog", pub.events[0].Value.(SearchEvent).Query)
}

func TestCollectorDropsWhenFull(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 1)

	// Not started, so the buffer fills after one event.
	c.Track(SearchEvent{Query: "a"})
	c.Track(SearchEvent{Query: "b"})
	c.Start(context.Background())
	c.Close()

	assert.Equal(t, 1, pub.count())
}

func TestCollectorDrainsOnCancel(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 10)
	c.Track(SearchEvent{Query: "a"})
	c.Track(SearchEvent{Query: "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Start(ctx)
	<-c.done

	assert.Equal(t, 2, pub.count())
}

func TestCollectorTrackAfterClose(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 10)
	c.Start(context.Background())
	c.Track(SearchEvent{Query: "a"})
	c.Close()

	assert.NotPanics(t, func() {
		c.Track(SearchEvent{Query: "late"})
		c.Close()
	})
	assert.Equal(t, 1, pub.count())
}
