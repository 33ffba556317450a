package driver

import (
	"testing"
)

func filterTrue(d Driver) bool {
	return true
}
func filterFalse(d Driver) bool {
	return false
}

func TestFilterNot(t *testing.T) {
	if FilterNot(filterTrue)(nil) != false {
		t.Error("FilterNot(filterTrue)() must be false")
	}
	if FilterNot(filterFalse)(nil) != true {
		t.Error("FilterNot(filterFalse)() must be true")
	}
}

func TestFilterAnd(t *testing.T) {
	if FilterAnd(filterTrue, filterTrue)(nil) != true {
		t.Error("FilterAnd(filterTrue, filterTrue)() must be true")
	}
	if FilterAnd(filterTrue, filterFalse)(nil) != false {
		t.Error("FilterAnd(filterTrue, filterFalse)() must be false")
	}
	if FilterAnd(filterFalse, filterTrue)(nil) != false {
		t.Error("FilterAnd(filterFalse, filterTrue)() must be false")
	}
	if FilterAnd(filterFalse, filterFalse)(nil) != false {
		t.Error("FilterAnd(filterFalse, filterFalse)() must be false")
	}
	if FilterAnd(filterFalse, filterTrue, filterTrue)(nil) != false {
		t.Error("FilterAnd(filterFalse, filterTrue, filterTrue)() must be false")
	}
	if FilterAnd(filterTrue, filterTrue, filterTrue)(nil) != true {
		t.Error("FilterAnd(filterTrue, filterTrue, filterTrue)() must be true")
	}
}

func TestManagerQuery(t *testing.T) {
	m := &Manager{drivers: make(map[string]Driver)}

	if err := m.Register(&videoAdapterMock{}, Info{Label: "low", DeviceType: Camera, Position: PositionBack, Priority: PriorityLow}); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(&videoAdapterMock{}, Info{Label: "front", DeviceType: Camera, Position: PositionFront}); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(&videoAdapterMock{}, Info{Label: "high", DeviceType: Camera, Position: PositionBack, Priority: PriorityHigh}); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(&adapterMock{}, Info{Label: "broken"}); err == nil {
		t.Error("expected a non recorder adapter to be rejected")
	}

	all := m.Query(FilterVideoRecorder())
	if len(all) != 3 {
		t.Fatalf("expected 3 drivers, got %d", len(all))
	}
	labels := []string{all[0].Info().Label, all[1].Info().Label, all[2].Info().Label}
	expected := []string{"high", "front", "low"}
	for i := range expected {
		if labels[i] != expected[i] {
			t.Errorf("expected order %v, got %v", expected, labels)
			break
		}
	}

	back := m.Query(FilterAnd(FilterDeviceType(Camera), FilterPosition(PositionBack)))
	if len(back) != 2 {
		t.Errorf("expected 2 back cameras, got %d", len(back))
	}

	byID := m.Query(FilterID(all[1].ID()))
	if len(byID) != 1 || byID[0].Info().Label != "front" {
		t.Errorf("expected to find the front camera by id, got %v", byID)
	}

	m.Unregister(all[1].ID())
	m.Unregister("unknown")
	if n := len(m.Query(nil)); n != 2 {
		t.Errorf("expected 2 drivers after unregister, got %d", n)
	}
}

func TestPositionOpposite(t *testing.T) {
	if PositionFront.Opposite() != PositionBack {
		t.Error("front must be opposite to back")
	}
	if PositionBack.Opposite() != PositionFront {
		t.Error("back must be opposite to front")
	}
	if PositionUnspecified.Opposite() != PositionUnspecified {
		t.Error("unspecified has no opposite")
	}
}
