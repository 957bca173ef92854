// Package event contains domain events.
package event

import (
	"sync"
)

// Event domain event interface.
type Event interface {
	Name() string
	IsAsynchronous() bool
}

type baseEvent struct {
	name  string
	async bool
}

func (e baseEvent) Name() string {
	return e.name
}

func (e baseEvent) IsAsynchronous() bool {
	return e.async
}

// Handler interface.
type Handler interface {
	Notify(event Event)
}

// HandlerFunc adapts function to Handler.
type HandlerFunc func(Event)

// Notify calls f.
func (f HandlerFunc) Notify(ev Event) {
	f(ev)
}

// Publisher notifies subscribers by events.
type Publisher struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
	pending  sync.WaitGroup
}

// NewPublisher constructor.
func NewPublisher() *Publisher {
	return &Publisher{
		handlers: make(map[string][]Handler),
	}
}

// NotifyAll notifies handlers subscribed to event name.
// Asynchronous events are delivered in separate goroutine. Nil publisher is a no-op.
func (p *Publisher) NotifyAll(ev Event) {
	if p == nil {
		return
	}

	if !ev.IsAsynchronous() {
		p.notify(ev)
		return
	}

	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		p.notify(ev)
	}()
}

// Wait blocks until all asynchronous notifications are delivered.
func (p *Publisher) Wait() {
	if p == nil {
		return
	}
	p.pending.Wait()
}

func (p *Publisher) notify(ev Event) {
	p.mu.RLock()
	handlers := p.handlers[ev.Name()]
	p.mu.RUnlock()

	for _, handler := range handlers {
		handler.Notify(ev)
	}
}

// Subscribe subscribes handler for specified events.
// Handler subscribed twice to one event is notified twice.
func (p *Publisher) Subscribe(handler Handler, events ...Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ev := range events {
		p.handlers[ev.Name()] = append(p.handlers[ev.Name()], handler)
	}
}
