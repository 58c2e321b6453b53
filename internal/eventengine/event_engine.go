package eventengine

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

type EventName string
type SubscriberName string

type Event struct {
	Name    EventName
	Payload any
}

type Subscriber struct {
	Name      SubscriberName // Name of subscriber
	AddressCh chan<- any     // Where a subscriber is listening for events at.
}

type Publisher interface {
	Publish(event *Event) error
}

type RegisterPublisher interface {
	Publisher
	RegisterEvents(eventNames ...EventName)
}

type SubscribeRegisterPublisher interface {
	RegisterPublisher
	Subscribe(toEventName EventName, subscriber *Subscriber) error
}

var (
	ErrEngineStopped = errors.New("event engine has stopped")
	// ErrEngineBusy is returned when the event queue is full. Publish never
	// waits on slow subscribers.
	ErrEngineBusy = errors.New("event engine queue is full")
)

type subscribers struct {
	names      []SubscriberName
	addressChs []chan<- any
}

type EventEngineConfig struct {
	DoneCh        <-chan struct{}
	InternalSrvWG *sync.WaitGroup
	BufferSize    int
}

type eventEngine struct {
	*EventEngineConfig
	mu            sync.RWMutex
	eventEngineCh chan *Event // This is what the event engine listens to for events being published.
	events        map[EventName]*subscribers
}

// NewEventEngine starts the engine goroutine. It stops, after delivering what
// was already published, once DoneCh is closed, and then closes every
// subscriber's AddressCh.
func NewEventEngine(cfg *EventEngineConfig) (SubscribeRegisterPublisher, error) {
	if cfg == nil {
		return nil, errors.New("'eventEngineConfig' can not be nil")
	}
	if cfg.DoneCh == nil || cfg.InternalSrvWG == nil {
		return nil, errors.New("either DoneCh or InternalSrvWG is nil")
	}

	size := cfg.BufferSize
	if size <= 0 {
		size = 20
	}

	e := &eventEngine{
		EventEngineConfig: cfg,
		events:            make(map[EventName]*subscribers, 20),
		eventEngineCh:     make(chan *Event, size),
	}

	e.InternalSrvWG.Add(1)
	go e.listen()

	return e, nil
}

func (e *eventEngine) listen() {
	defer e.InternalSrvWG.Done()

	log.Println("event engine is listening...")

	for {
		select {
		case <-e.DoneCh:
			log.Println("event engine is shutting down, draining pending events")
			for {
				select {
				case ev := <-e.eventEngineCh:
					e.broadcaster(ev)
				default:
					e.shutdownSubscribersAddressCh()
					return
				}
			}

		case ev := <-e.eventEngineCh:
			e.broadcaster(ev)
		}
	}
}

func (e *eventEngine) broadcaster(ev *Event) {
	e.mu.RLock()
	subs, exists := e.events[ev.Name]
	var addressChs []chan<- any
	if exists {
		addressChs = append(addressChs, subs.addressChs...)
	}
	e.mu.RUnlock()

	if !exists {
		log.Printf("event %v not found. check your event handler", ev.Name)
		return
	}

	for _, addressCh := range addressChs {
		addressCh <- ev.Payload
	}
}

// RegisterEvents adds all events a publisher can publish to.
//
// IMPORTANT: Register an event before you try to publish or subscribe to it.
func (e *eventEngine) RegisterEvents(eventNames ...EventName) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, eventName := range eventNames {
		if _, exists := e.events[eventName]; exists {
			continue
		}
		e.events[eventName] = &subscribers{}
	}
}

func (e *eventEngine) Subscribe(toEventName EventName, newSubscriber *Subscriber) error {
	if newSubscriber == nil || newSubscriber.AddressCh == nil {
		return fmt.Errorf("subscriber to '%v' has no AddressCh", toEventName)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	subs, ok := e.events[toEventName]
	if !ok {
		return fmt.Errorf("event '%v' not found. register it before subscribing", toEventName)
	}

	subs.names = append(subs.names, newSubscriber.Name)
	subs.addressChs = append(subs.addressChs, newSubscriber.AddressCh)
	return nil
}

func (e *eventEngine) Publish(ev *Event) error {
	e.mu.RLock()
	_, exists := e.events[ev.Name]
	e.mu.RUnlock()
	if !exists {
		return fmt.Errorf("event %v not found. register it before publishing", ev.Name)
	}

	select {
	case <-e.DoneCh:
		return ErrEngineStopped
	default:
	}

	select {
	case e.eventEngineCh <- ev:
		return nil
	default:
		return ErrEngineBusy
	}
}

func (e *eventEngine) shutdownSubscribersAddressCh() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, subs := range e.events {
		for _, addressCh := range subs.addressChs {
			close(addressCh)
		}
		subs.addressChs = nil
		subs.names = nil
	}
	log.Println("event engine subscribers closed")
}
