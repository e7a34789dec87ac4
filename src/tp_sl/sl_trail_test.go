package tp_sl

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestInitialStop(t *testing.T) {
	sl := InitialStop(d("0.0001"), d("30"))
	if !sl.Equal(d("0.00007")) {
		t.Fatalf("expected sl=0.00007, got=%s", sl.String())
	}
}

func TestComputeNextTrailingStop_PriceNotAboveHWM_NoMove(t *testing.T) {
	hwm, sl, moved := ComputeNextTrailingStop(d("0.0001"), d("0.0001"), d("0.00007"), d("5"))
	if moved {
		t.Fatalf("expected moved=false")
	}
	if !hwm.Equal(d("0.0001")) || !sl.Equal(d("0.00007")) {
		t.Fatalf("expected unchanged, got hwm=%s sl=%s", hwm, sl)
	}
}

func TestComputeNextTrailingStop_RaisesWithHWM(t *testing.T) {
	hwm, sl, moved := ComputeNextTrailingStop(d("120"), d("100"), d("70"), d("5"))
	if !moved {
		t.Fatalf("expected moved=true")
	}
	if !hwm.Equal(d("120")) {
		t.Fatalf("expected hwm=120, got=%s", hwm)
	}
	if !sl.Equal(d("114")) {
		t.Fatalf("expected sl=114, got=%s", sl)
	}
}

func TestComputeNextTrailingStop_NeverLowersStop(t *testing.T) {
	// candidate 101*0.95 = 95.95 is below a manually placed 99
	hwm, sl, moved := ComputeNextTrailingStop(d("101"), d("100"), d("99"), d("5"))
	if moved {
		t.Fatalf("expected moved=false, sl must not decrease")
	}
	if !hwm.Equal(d("101")) {
		t.Fatalf("expected hwm to follow price, got=%s", hwm)
	}
	if !sl.Equal(d("99")) {
		t.Fatalf("expected sl unchanged=99, got=%s", sl)
	}
}

func TestComputeNextTrailingStop_TrailSequence(t *testing.T) {
	entry := d("0.0001000")
	hwm := entry
	sl := InitialStop(entry, d("30"))

	prices := []string{"0.00010", "0.00012", "0.00011", "0.00013"}
	wantHWM := []string{"0.00010", "0.00012", "0.00012", "0.00013"}
	wantSL := []string{"0.00007", "0.000114", "0.000114", "0.0001235"}

	for i, p := range prices {
		hwm, sl, _ = ComputeNextTrailingStop(d(p), hwm, sl, d("5"))
		if !hwm.Equal(d(wantHWM[i])) {
			t.Fatalf("tick %d: expected hwm=%s, got=%s", i, wantHWM[i], hwm)
		}
		if !sl.Equal(d(wantSL[i])) {
			t.Fatalf("tick %d: expected sl=%s, got=%s", i, wantSL[i], sl)
		}
	}
}

func TestComputeNextTrailingStop_RandomWalkMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	price := d("1")
	hwm := price
	sl := InitialStop(price, d("30"))
	maxSeen := price

	for i := 0; i < 2000; i++ {
		step := decimal.NewFromFloat(rng.Float64()*0.1 - 0.05)
		price = price.Mul(decimal.NewFromInt(1).Add(step)).Round(12)
		if !price.IsPositive() {
			price = d("0.000001")
		}
		if price.GreaterThan(maxSeen) {
			maxSeen = price
		}

		prevSL, prevHWM := sl, hwm
		hwm, sl, _ = ComputeNextTrailingStop(price, hwm, sl, d("5"))

		if sl.LessThan(prevSL) {
			t.Fatalf("tick %d: stop lowered from %s to %s", i, prevSL, sl)
		}
		if hwm.LessThan(prevHWM) {
			t.Fatalf("tick %d: hwm lowered from %s to %s", i, prevHWM, hwm)
		}
		if !hwm.Equal(maxSeen) {
			t.Fatalf("tick %d: expected hwm=%s (max seen), got=%s", i, maxSeen, hwm)
		}
	}
}

func TestStopHit(t *testing.T) {
	if !StopHit(d("0.00007"), d("0.00007")) {
		t.Fatalf("expected hit when price == stop")
	}
	if StopHit(d("0.0000701"), d("0.00007")) {
		t.Fatalf("expected no hit above stop")
	}
}
