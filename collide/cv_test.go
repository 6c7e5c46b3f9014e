package collide

import "testing"

func TestGatePulseWidth(t *testing.T) {
	cv := NewCVBank(testSampleRate)
	want := int(gatePulseSeconds * testSampleRate)

	cv.pulse(GateMain)
	high := 0
	for i := 0; i < want*3; i++ {
		if cv.gateSample(GateMain) == 1 {
			high++
		}
	}
	if high != want {
		t.Fatalf("gate high for %d samples, want %d", high, want)
	}
}

func TestGateRetriggerDuringPulse(t *testing.T) {
	cv := NewCVBank(testSampleRate)
	width := cv.pulseSamples

	cv.pulse(GateMain)
	for i := 0; i < width/2; i++ {
		cv.gateSample(GateMain)
	}
	cv.pulse(GateMain)

	high := 0
	for i := 0; i < width*3; i++ {
		if cv.gateSample(GateMain) == 1 {
			high++
		}
	}
	if high != width {
		t.Fatalf("retriggered gate high for %d more samples, want full width %d", high, width)
	}
}

func TestGatesAreIndependent(t *testing.T) {
	cv := NewCVBank(testSampleRate)
	cv.pulse(GateCircle)
	if cv.gateSample(GateSquare) != 0 {
		t.Fatalf("square gate fired from circle pulse")
	}
	if cv.gateSample(GateCircle) != 1 {
		t.Fatalf("circle gate did not fire")
	}
}

func TestKinematicsNeutralUntilPublished(t *testing.T) {
	cv := NewCVBank(testSampleRate)
	if cv.Ready() {
		t.Fatalf("bank ready before any publish")
	}
	px, py, vx, vy := cv.Kinematics(ShapeCircle)
	if px != 0 || py != 0 || vx != 0 || vy != 0 {
		t.Fatalf("neutral snapshot = %f,%f,%f,%f", px, py, vx, vy)
	}

	cv.publishKinematics(ShapeCircle, 0.25, 0.75, -0.5, 1.0)
	cv.markReady()
	if !cv.Ready() {
		t.Fatalf("bank not ready after publish")
	}
	px, py, vx, vy = cv.Kinematics(ShapeCircle)
	if px != 0.25 || py != 0.75 || vx != -0.5 || vy != 1.0 {
		t.Fatalf("snapshot = %f,%f,%f,%f", px, py, vx, vy)
	}

	cv.clearKinematics(ShapeCircle)
	px, py, _, _ = cv.Kinematics(ShapeCircle)
	if px != 0 || py != 0 {
		t.Fatalf("cleared snapshot = %f,%f", px, py)
	}
}

func TestResetGatesSwallowsPendingPulses(t *testing.T) {
	cv := NewCVBank(testSampleRate)
	cv.pulse(GateMain)
	cv.pulse(GateTriangle)
	cv.resetGates()
	for g := GateCategory(0); g < NumGates; g++ {
		if cv.gateSample(g) != 0 {
			t.Fatalf("gate %d fired after reset", g)
		}
	}
}
