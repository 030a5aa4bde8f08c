// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//
package drive

import (
	"context"
	"sync"

	"github.com/mattn/go-pubsub"
)

const (
	// Number of status updates buffered per subscriber
	subscriberQueueSize = 256
)

// statusEvent is a numbered status update.
type statusEvent struct {
	seq    uint64
	status Status
}

// statusFeed delivers status updates to subscribers in the order
// they were published.
// Events travel through go-pubsub, which calls handlers concurrently,
// so they are put back in order before they are fanned out.
type statusFeed struct {
	pub *pubsub.PubSub

	mutex       sync.Mutex
	lastSeq     uint64
	nextSeq     uint64
	pending     map[uint64]Status
	lastID      int
	subscribers map[int]*statusSubscriber
}

func newStatusFeed() *statusFeed {
	f := &statusFeed{
		pub:         pubsub.New(),
		nextSeq:     1,
		pending:     make(map[uint64]Status),
		subscribers: make(map[int]*statusSubscriber),
	}
	f.pub.Sub(f.dispatch)
	return f
}

// Publish the given status.
// Callers must serialize calls to Publish.
func (f *statusFeed) Publish(status Status) {
	f.mutex.Lock()
	f.lastSeq++
	ev := statusEvent{seq: f.lastSeq, status: status}
	f.mutex.Unlock()
	f.pub.Pub(ev)
}

// dispatch is called by go-pubsub for every event.
func (f *statusFeed) dispatch(ev statusEvent) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.pending[ev.seq] = ev.status
	for {
		status, found := f.pending[f.nextSeq]
		if !found {
			return
		}
		delete(f.pending, f.nextSeq)
		f.nextSeq++
		for _, sub := range f.subscribers {
			sub.deliver(status)
		}
	}
}

// Subscribe calls the given callback for every status update.
// Call the returned function to stop the subscription.
func (f *statusFeed) Subscribe(cb func(Status)) context.CancelFunc {
	sub := &statusSubscriber{
		queue: make(chan Status, subscriberQueueSize),
		done:  make(chan struct{}),
	}
	f.mutex.Lock()
	f.lastID++
	id := f.lastID
	f.subscribers[id] = sub
	f.mutex.Unlock()

	go sub.run(cb)
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mutex.Lock()
			delete(f.subscribers, id)
			f.mutex.Unlock()
			close(sub.done)
		})
	}
}

type statusSubscriber struct {
	queue chan Status
	done  chan struct{}
}

// deliver queues the given status.
// When the queue is full, the oldest update is dropped.
func (s *statusSubscriber) deliver(status Status) {
	for {
		select {
		case s.queue <- status:
			return
		default:
			select {
			case <-s.queue:
				droppedStatusTotal.Inc()
			default:
			}
		}
	}
}

func (s *statusSubscriber) run(cb func(Status)) {
	for {
		select {
		case status := <-s.queue:
			select {
			case <-s.done:
				return
			default:
				cb(status)
			}
		case <-s.done:
			return
		}
	}
}
