package testutil

import (
	"context"
	"sync"
)

type PublishedEvent struct {
	Type string
	Data interface{}
}

// RecordingPublisher keeps every published event in order.
type RecordingPublisher struct {
	Faults

	mu     sync.Mutex
	events []PublishedEvent
}

func (p *RecordingPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	if err := p.take("Publish"); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Type: eventType, Data: data})
	return nil
}

func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent{}, p.events...)
}

func (p *RecordingPublisher) Count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, event := range p.events {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

// MemoryReportStorage answers ObjectExists from a fixed set of keys.
type MemoryReportStorage struct {
	Faults

	mu      sync.Mutex
	Bucket  string
	objects map[string]struct{}
}

func NewMemoryReportStorage(bucket string, keys ...string) *MemoryReportStorage {
	s := &MemoryReportStorage{Bucket: bucket, objects: make(map[string]struct{})}
	for _, key := range keys {
		s.objects[key] = struct{}{}
	}
	return s
}

func (s *MemoryReportStorage) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	if err := s.take("ObjectExists"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectKey]
	return ok, nil
}

func (s *MemoryReportStorage) BucketName() string {
	return s.Bucket
}

func (s *MemoryReportStorage) Add(objectKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = struct{}{}
}
