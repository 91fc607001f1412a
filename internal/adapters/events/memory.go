package events

import (
	"context"
	"sync"

	"github.com/luminacare/pipeline-service/internal/contracts"
)

type MemoryDomainPublisher struct {
	mu     sync.Mutex
	events []contracts.EventEnvelope
}

func NewMemoryDomainPublisher() *MemoryDomainPublisher {
	return &MemoryDomainPublisher{events: []contracts.EventEnvelope{}}
}
func (p *MemoryDomainPublisher) PublishDomain(_ context.Context, e contracts.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}
func (p *MemoryDomainPublisher) Events() []contracts.EventEnvelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]contracts.EventEnvelope(nil), p.events...)
}

type MemoryAnalyticsPublisher struct {
	mu     sync.Mutex
	events []contracts.EventEnvelope
}

func NewMemoryAnalyticsPublisher() *MemoryAnalyticsPublisher {
	return &MemoryAnalyticsPublisher{events: []contracts.EventEnvelope{}}
}
func (p *MemoryAnalyticsPublisher) PublishAnalytics(_ context.Context, e contracts.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}
func (p *MemoryAnalyticsPublisher) Events() []contracts.EventEnvelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]contracts.EventEnvelope(nil), p.events...)
}

type MemoryDLQPublisher struct {
	mu      sync.Mutex
	records []contracts.DLQRecord
}

func NewMemoryDLQPublisher() *MemoryDLQPublisher {
	return &MemoryDLQPublisher{records: []contracts.DLQRecord{}}
}
func (p *MemoryDLQPublisher) PublishDLQ(_ context.Context, r contracts.DLQRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r)
	return nil
}
func (p *MemoryDLQPublisher) Records() []contracts.DLQRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]contracts.DLQRecord(nil), p.records...)
}
