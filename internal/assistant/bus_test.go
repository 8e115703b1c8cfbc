package assistant

import "testing"

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewNavigationBus()
	var got []string

	bus.Subscribe(func(ev NavigationEvent) { got = append(got, "a:"+ev.Path) })
	unsub := bus.Subscribe(func(ev NavigationEvent) { got = append(got, "b:"+ev.Path) })

	bus.Publish(NavigationEvent{Path: "/x"})
	unsub()
	unsub()
	bus.Publish(NavigationEvent{Path: "/y"})

	want := []string{"a:/x", "b:/x", "a:/y"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestBusStampsTime(t *testing.T) {
	bus := NewNavigationBus()
	var ev NavigationEvent
	bus.Subscribe(func(e NavigationEvent) { ev = e })
	bus.Publish(NavigationEvent{Path: "/"})
	if ev.At.IsZero() {
		t.Error("expected publish time to be set")
	}
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	bus := NewNavigationBus()
	calls := 0
	var unsub func()
	unsub = bus.Subscribe(func(NavigationEvent) {
		calls++
		unsub()
	})

	bus.Publish(NavigationEvent{Path: "/"})
	bus.Publish(NavigationEvent{Path: "/"})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
