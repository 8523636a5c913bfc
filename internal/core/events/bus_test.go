package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskcore/task-management/internal/core/events"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent(eventType string) events.BaseEvent {
	return events.BaseEvent{
		ID:        "evt-1",
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(discardLogger())
	})

	Describe("Publish", func() {
		It("fans out to every subscriber of the type", func() {
			first := make(chan string, 1)
			second := make(chan string, 1)
			bus.Subscribe("thing.happened", func(ctx context.Context, e events.Event) error {
				first <- e.EventID()
				return nil
			})
			bus.Subscribe("thing.happened", func(ctx context.Context, e events.Event) error {
				second <- e.EventID()
				return nil
			})

			Expect(bus.Publish(context.Background(), testEvent("thing.happened"))).To(Succeed())
			Eventually(first).Should(Receive(Equal("evt-1")))
			Eventually(second).Should(Receive(Equal("evt-1")))
		})

		It("still delivers when the publisher's context is already cancelled", func() {
			handlerCtxErr := make(chan error, 1)
			bus.Subscribe("thing.happened", func(ctx context.Context, e events.Event) error {
				handlerCtxErr <- ctx.Err()
				return nil
			})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(bus.Publish(ctx, testEvent("thing.happened"))).To(Succeed())
			Eventually(handlerCtxErr).Should(Receive(BeNil()))
		})

		It("swallows handler errors", func() {
			done := make(chan struct{}, 1)
			bus.Subscribe("thing.happened", func(ctx context.Context, e events.Event) error {
				done <- struct{}{}
				return errors.New("subscriber broke")
			})

			Expect(bus.Publish(context.Background(), testEvent("thing.happened"))).To(Succeed())
			Eventually(done).Should(Receive())
		})
	})

	Describe("PublishSync", func() {
		It("returns the first handler error", func() {
			bus.Subscribe("thing.happened", func(ctx context.Context, e events.Event) error {
				return errors.New("subscriber broke")
			})

			err := bus.PublishSync(context.Background(), testEvent("thing.happened"))
			Expect(err).To(MatchError(ContainSubstring("subscriber broke")))
		})

		It("is a no-op for a type with no subscribers", func() {
			Expect(bus.PublishSync(context.Background(), testEvent("nobody.cares"))).To(Succeed())
		})
	})
})
