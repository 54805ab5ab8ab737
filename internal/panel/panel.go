// Package panel encodes engine snapshots as the single-letter serial
// commands understood by the physical operator panel: a rod position
// servo, a power LED, a coolant pump motor, and a scram lamp.
package panel

import (
	"fmt"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/engine"
)

const (
	// Servo travel for the rod indicator. The gearing maps 50% rod
	// travel onto 160 servo degrees, clamped to the mechanical stops.
	servoMin = 5.0
	servoMax = 140.0

	// PWM duty for the power LED, saturating at full rated power.
	ledMax     = 250.0
	ratedPower = 600.0 // [MW]

	// Pump motor speed band and the flow range it indicates.
	motorMin = 20
	motorMax = 180
	flowMin  = 200.0e3  // [g/s]
	flowMax  = 1200.0e3 // [g/s]
)

// RodCommand positions the rod servo from the rod withdrawal percent.
func RodCommand(rodPct float64) string {
	deg := rodPct / 50.0 * 160.0
	if deg < 0 {
		deg = -deg
	}
	if deg < servoMin {
		deg = servoMin
	} else if deg > servoMax {
		deg = servoMax
	}
	return fmt.Sprintf("r%.1f", deg)
}

// PowerCommand drives the power LED brightness from thermal power [MW].
func PowerCommand(powerMW float64) string {
	norm := powerMW / ratedPower
	if norm < 0 {
		norm = -norm
	}
	duty := ledMax * norm
	if duty >= ledMax {
		duty = ledMax
	}
	return fmt.Sprintf("p%d", int(duty))
}

// FlowCommand sets the pump motor speed from coolant flow [g/s].
func FlowCommand(flowGPS float64) string {
	if flowGPS < flowMin {
		flowGPS = flowMin
	} else if flowGPS > flowMax {
		flowGPS = flowMax
	}
	speed := motorMin + int((flowGPS-flowMin)/(flowMax-flowMin)*float64(motorMax-motorMin))
	return fmt.Sprintf("c%d", speed)
}

// ScramCommand drives the scram lamp; it stays lit while latched.
func ScramCommand(scram bool) string {
	if scram {
		return "s1"
	}
	return "s0"
}

// Encode produces the full command sequence for one snapshot, in the
// order the panel firmware services them.
func Encode(snap engine.Snapshot) []string {
	return []string{
		RodCommand(snap.State[dynamo.IdxRodPos]),
		PowerCommand(snap.ThermalPowerMW),
		FlowCommand(snap.CoolantFlow),
		ScramCommand(snap.Scram),
	}
}
