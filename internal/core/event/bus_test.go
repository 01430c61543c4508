package event

import "testing"

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []RetireReason
	Subscribe(b, func(e UnitRetired) { got = append(got, e.Reason) })

	Emit(b, UnitRetired{Reason: RetireKilled})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatal("event delivered before SwapBuffers")
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0] != RetireKilled {
		t.Fatalf("got %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event delivered twice: %v", got)
	}
}

func TestBusDispatchOrder(t *testing.T) {
	b := NewBus()
	var seq []string
	Subscribe(b, func(Explosion) { seq = append(seq, "explosion") })
	Subscribe(b, func(UnitRetired) { seq = append(seq, "retired") })

	Emit(b, UnitRetired{})
	Emit(b, Explosion{})
	Emit(b, UnitRetired{})
	b.SwapBuffers()
	b.DispatchAll()

	want := []string{"explosion", "retired", "retired"}
	if len(seq) != len(want) {
		t.Fatalf("got %v, want %v", seq, want)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("got %v, want %v", seq, want)
		}
	}
}

func TestEmitNilBus(t *testing.T) {
	Emit[UnitRetired](nil, UnitRetired{})
}

func TestRetireReasonString(t *testing.T) {
	if RetireLeaked.String() != "leaked" || RetireReason(0).String() != "unknown" {
		t.Error("unexpected reason names")
	}
}
