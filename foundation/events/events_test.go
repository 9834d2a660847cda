package events_test

import (
	"testing"

	"github.com/deadsgold/powledger/foundation/events"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("1")
	ch2 := evts.Acquire("2")

	if evts.Acquire("1") != ch1 {
		t.Fatalf("Should get back the same channel for the same id.")
	}

	if sent := evts.Send("viewer: block[1]"); sent != 2 {
		t.Fatalf("Should send to both receivers, got %d.", sent)
	}

	if msg := <-ch1; msg != "viewer: block[1]" {
		t.Fatalf("Should receive the message, got %q.", msg)
	}
	<-ch2

	if err := evts.Release("1"); err != nil {
		t.Fatalf("Should be able to release a receiver: %s", err)
	}

	if _, open := <-ch1; open {
		t.Fatalf("Should close a released channel.")
	}

	if err := evts.Release("1"); err == nil {
		t.Fatalf("Should not release an unknown receiver.")
	}

	for i := 0; i < 150; i++ {
		evts.Send("flood")
	}

	if len(ch2) != 100 {
		t.Fatalf("Should drop messages for a slow receiver, buffered %d.", len(ch2))
	}

	evts.Shutdown()
	if evts.Receivers() != 0 {
		t.Fatalf("Should remove every receiver on shutdown.")
	}
}
