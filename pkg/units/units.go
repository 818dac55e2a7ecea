package units

import "fmt"

// Unit is a closed enum of usage units accepted by billable features.
type Unit string

const (
	UnitSeconds Unit = "seconds"
	UnitWords   Unit = "words"
	UnitImages  Unit = "images"
	UnitMinutes Unit = "minutes"
)

// toSeconds maps each unit to its canonical-second multiplier.
// 10 words = 1 second; 1 image = 10 seconds.
var toSeconds = map[Unit]float64{
	UnitSeconds: 1,
	UnitWords:   0.1,
	UnitImages:  10,
	UnitMinutes: 60,
}

// InvalidUnitError reports a unit outside the closed enum. This is a
// programming/configuration error; there is no default multiplier.
type InvalidUnitError struct {
	Unit Unit
}

func (e *InvalidUnitError) Error() string {
	return fmt.Sprintf("invalid usage unit: %q", string(e.Unit))
}

// ToSeconds converts an amount in the given unit to canonical seconds.
func ToSeconds(amount float64, unit Unit) (float64, error) {
	m, ok := toSeconds[unit]
	if !ok {
		return 0, &InvalidUnitError{Unit: unit}
	}
	return amount * m, nil
}

// Valid reports whether the unit is part of the closed enum.
func (u Unit) Valid() bool {
	_, ok := toSeconds[u]
	return ok
}
