package core

import (
	"github.com/spaghettifunk/vkscene/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04
	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05
	// Mouse moved. Data: *MouseEvent
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06
	// Mouse wheel. Data: *MouseEvent
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07
	// Resized/resolution changed from the OS. Data: *SystemEvent
	EVENT_CODE_RESIZED EventCode = 0x08
	// Press and release of the same button in place. Data: *MouseEvent
	EVENT_CODE_MOUSE_CLICK EventCode = 0x09
	// Second press following a click. Data: *MouseEvent
	EVENT_CODE_MOUSE_DOUBLE_CLICK EventCode = 0x0A
	// Something changed under the asset directory. Data: *AssetEvent
	EVENT_CODE_ASSETS_CHANGED EventCode = 0x0B

	MAX_EVENT_CODE EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   int32
	PosY   int32
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type AssetEvent struct {
	Path string
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

const defaultEventQueueSize = 256

// EventBus routes events to registered callbacks. Events posted from window
// callbacks are queued and dispatched once per loop iteration.
type EventBus struct {
	registered map[EventCode][]FnOnEvent
	queue      *containers.RingQueue[EventContext]
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]FnOnEvent),
		queue:      containers.NewRingQueue[EventContext](defaultEventQueueSize),
	}
}

// Register adds a callback for code. Callbacks run in registration order.
func (b *EventBus) Register(code EventCode, onEvent FnOnEvent) {
	b.registered[code] = append(b.registered[code], onEvent)
}

// Fire delivers an event immediately. If a handler returns true, the event is
// considered handled and is not passed on to any more listeners.
func (b *EventBus) Fire(context EventContext) bool {
	for _, cb := range b.registered[context.Type] {
		if cb(context) {
			return true
		}
	}
	return false
}

// Post queues an event for the next Dispatch.
func (b *EventBus) Post(context EventContext) {
	if err := b.queue.Enqueue(context); err != nil {
		LogWarn("event queue full, dropping event %d", context.Type)
	}
}

// Dispatch fires every queued event in order and returns how many were delivered.
func (b *EventBus) Dispatch() int {
	n := 0
	for !b.queue.IsEmpty() {
		ev, err := b.queue.Dequeue()
		if err != nil {
			break
		}
		b.Fire(ev)
		n++
	}
	return n
}

func (b *EventBus) Shutdown() {
	b.registered = make(map[EventCode][]FnOnEvent)
	for !b.queue.IsEmpty() {
		_, _ = b.queue.Dequeue()
	}
}
