package combat

import (
	"testing"

	"duskward/pkg/entity"
)

func TestDefaultRulesWritesDamage(t *testing.T) {
	source := entity.New(1, entity.Kind{Tag: entity.KindPlayer}, entity.BaseStats{Strength: 16})
	target := entity.New(2, entity.Kind{Tag: entity.KindMonster}, entity.BaseStats{Constitution: 10})
	target.HP = 20

	v := &View{Source: source, Target: target}
	if err := DefaultRules.Evaluate(v); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !v.DamageDealt {
		t.Fatalf("expected damage to be dealt")
	}
	if v.DamageAmount != 2 { // strMod=(16-10)/2=3, reduction=10/10=1, damage=2
		t.Fatalf("expected damage amount 2, got %v", v.DamageAmount)
	}
}

func TestViewOnlyDamageIsWritable(t *testing.T) {
	source := entity.New(1, entity.Kind{Tag: entity.KindPlayer}, entity.BaseStats{})
	target := entity.New(2, entity.Kind{Tag: entity.KindMonster}, entity.BaseStats{})
	v := &View{Source: source, Target: target}

	if err := v.Set("target.hp", 5); err == nil {
		t.Fatalf("expected target.hp to be unwritable")
	}
	if err := v.Set("source.damage", 5); err == nil {
		t.Fatalf("expected source.damage to be unwritable, only target.damage has a side effect")
	}
}

func TestViewReadsNamespacedAttributes(t *testing.T) {
	source := entity.New(1, entity.Kind{Tag: entity.KindPlayer}, entity.BaseStats{Strength: 12})
	target := entity.New(2, entity.Kind{Tag: entity.KindMonster}, entity.BaseStats{})
	target.HP = 42
	v := &View{Source: source, Target: target}

	if val, ok := v.Get("source.strength"); !ok || val != 12 {
		t.Fatalf("expected source.strength=12, got %v ok=%v", val, ok)
	}
	if val, ok := v.Get("target.hp"); !ok || val != 42 {
		t.Fatalf("expected target.hp=42, got %v ok=%v", val, ok)
	}
	if _, ok := v.Get("target.nonsense"); ok {
		t.Fatalf("unknown attribute should not resolve")
	}
}
