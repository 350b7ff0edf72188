package qualifier

import "testing"

var all = []Qualifier{Unlimited, Relevant, Affine, Linear}

func TestMeetJoinCommutative(t *testing.T) {
	for _, a := range all {
		for _, b := range all {
			if Meet(a, b) != Meet(b, a) {
				t.Errorf("Meet(%v,%v) not commutative", a, b)
			}
			if Join(a, b) != Join(b, a) {
				t.Errorf("Join(%v,%v) not commutative", a, b)
			}
		}
	}
}

func TestMeetJoinAssociative(t *testing.T) {
	for _, a := range all {
		for _, b := range all {
			for _, c := range all {
				if Meet(Meet(a, b), c) != Meet(a, Meet(b, c)) {
					t.Errorf("Meet not associative for %v,%v,%v", a, b, c)
				}
				if Join(Join(a, b), c) != Join(a, Join(b, c)) {
					t.Errorf("Join not associative for %v,%v,%v", a, b, c)
				}
			}
		}
	}
}

func TestMeetJoinIdempotent(t *testing.T) {
	for _, a := range all {
		if Meet(a, a) != a {
			t.Errorf("Meet(%v,%v) != %v", a, a, a)
		}
		if Join(a, a) != a {
			t.Errorf("Join(%v,%v) != %v", a, a, a)
		}
	}
}

func TestMeetJoinAbsorptive(t *testing.T) {
	for _, a := range all {
		for _, b := range all {
			if Join(a, Meet(a, b)) != a {
				t.Errorf("absorption Join(%v,Meet(%v,%v)) != %v", a, a, b, a)
			}
			if Meet(a, Join(a, b)) != a {
				t.Errorf("absorption Meet(%v,Join(%v,%v)) != %v", a, a, b, a)
			}
		}
	}
}

func TestBottomTop(t *testing.T) {
	for _, a := range all {
		if Join(Unlimited, a) != a {
			t.Errorf("Unlimited not bottom for Join with %v", a)
		}
		if Meet(Linear, a) != a {
			t.Errorf("Linear not top for Meet with %v", a)
		}
	}
}

func TestLinearIsAffineJoinRelevant(t *testing.T) {
	if Join(Affine, Relevant) != Linear {
		t.Fatalf("Affine ∨ Relevant should be Linear, got %v", Join(Affine, Relevant))
	}
}

func TestOrder(t *testing.T) {
	if !LessEqual(Unlimited, Linear) {
		t.Fatal("Unlimited should be ≤ Linear")
	}
	if Less(Linear, Unlimited) {
		t.Fatal("Linear should not be < Unlimited")
	}
	if !Less(Unlimited, Relevant) {
		t.Fatal("Unlimited should be < Relevant")
	}
}

func TestJoinAllMeetAllIdentities(t *testing.T) {
	if JoinAll() != Unlimited {
		t.Fatalf("JoinAll() identity should be Unlimited, got %v", JoinAll())
	}
	if MeetAll() != Linear {
		t.Fatalf("MeetAll() identity should be Linear, got %v", MeetAll())
	}
}
