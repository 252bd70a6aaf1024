package entity

import "testing"

func TestWalkSetsOrientationAndWalking(t *testing.T) {
	e := New(1, Kind{Tag: KindPlayer}, BaseStats{})
	east := East
	e.Walk(&east)
	if e.Orientation != East || !e.Walking {
		t.Fatalf("expected orientation East and walking true, got %v walking=%v", e.Orientation, e.Walking)
	}

	e.Walk(nil)
	if e.Walking {
		t.Fatalf("expected walking false after Walk(nil)")
	}
	if e.Orientation != East {
		t.Fatalf("Walk(nil) must not change orientation, got %v", e.Orientation)
	}
}

func TestApplyDamageClampsAtZero(t *testing.T) {
	e := New(1, Kind{Tag: KindMonster}, BaseStats{})
	e.HP = 10

	if dead := e.ApplyDamage(4); dead {
		t.Fatalf("entity should survive 4 damage at 10 hp")
	}
	if e.HP != 6 {
		t.Fatalf("expected hp 6, got %d", e.HP)
	}

	if dead := e.ApplyDamage(100); !dead {
		t.Fatalf("entity should die from lethal damage")
	}
	if e.HP != 0 {
		t.Fatalf("expected hp clamped to 0, got %d", e.HP)
	}
}

func TestAttackBoxForFacingRotatesNorthSouth(t *testing.T) {
	e := New(1, Kind{Tag: KindPlayer}, BaseStats{})
	e.Position = Vec2{X: 0, Y: 0}
	e.AttackBox = Rect{HalfWidth: 0.5, HalfHeight: 0.25}
	e.AttackOffset = Vec2{X: 0.75, Y: 0.75}

	e.Orientation = East
	box, center := e.AttackBoxForFacing()
	if box.HalfWidth != 0.5 || box.HalfHeight != 0.25 {
		t.Fatalf("east-facing box should be unrotated, got %+v", box)
	}
	if center.X != 0.75 || center.Y != 0 {
		t.Fatalf("east-facing center wrong: %+v", center)
	}

	e.Orientation = North
	box, center = e.AttackBoxForFacing()
	if box.HalfWidth != 0.25 || box.HalfHeight != 0.5 {
		t.Fatalf("north-facing box should be rotated, got %+v", box)
	}
	if center.X != 0 || center.Y != 0.75 {
		t.Fatalf("north-facing center wrong: %+v", center)
	}
}

func TestKindNominalSpeedDiffersByTag(t *testing.T) {
	p := Kind{Tag: KindPlayer}
	m := Kind{Tag: KindMonster}
	if p.NominalSpeed() == m.NominalSpeed() {
		t.Fatalf("expected player and monster nominal speeds to differ")
	}
}
