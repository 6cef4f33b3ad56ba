package model

import "testing"

func TestParseFuelType(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]FuelType{
		"Diesel":    FuelDiesel,
		"diesel":    FuelDiesel,
		" UNLEADED": FuelUnleaded,
		"Unleaded":  FuelUnleaded,
	} {
		got, err := ParseFuelType(in)
		if err != nil || got != want {
			t.Fatalf("ParseFuelType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseFuelType("kerosene"); err == nil {
		t.Fatalf("want error for unknown fuel type")
	}
}
