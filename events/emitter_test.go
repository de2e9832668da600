package events

import "testing"

func TestEmitDeliversToSubscribers(t *testing.T) {
	e := New()
	var got any
	e.On(HeadChanged, func(payload any) { got = payload })

	e.Emit(HeadChanged, "hello")
	if got != "hello" {
		t.Fatalf("handler did not receive emitted payload: got %v", got)
	}
}

func TestEmitDeliversInSubscriptionOrder(t *testing.T) {
	e := New()
	var order []int
	e.On(Complete, func(any) { order = append(order, 1) })
	e.On(Complete, func(any) { order = append(order, 2) })
	e.On(Complete, func(any) { order = append(order, 3) })

	e.Emit(Complete, nil)
	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order: got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order: got %v, want %v", order, want)
		}
	}
}

func TestEmitRecoversPanickingHandler(t *testing.T) {
	e := New()
	e.On(Aborted, func(any) { panic("boom") })

	called := false
	e.On(Aborted, func(any) { called = true })

	e.Emit(Aborted, nil) // must not panic out of the test
	if !called {
		t.Fatal("a panicking handler must not prevent later handlers from running")
	}
}

func TestEmitWithNoSubscribersIsANoop(t *testing.T) {
	e := New()
	e.Emit(Committed, struct{}{})
}
