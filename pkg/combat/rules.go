package combat

// Evaluator resolves one attacker/target hit against a View, writing the
// "damage" attribute when the attack connects. Script evaluation errors are
// logged by the caller and skip this one resolution; the tick continues
// (spec.md §7).
type Evaluator interface {
	Evaluate(v *View) error
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(v *View) error

func (f EvaluatorFunc) Evaluate(v *View) error { return f(v) }

// DefaultRules is a concrete, hand-written rule set: damage is the
// attacker's Strength modifier ((STR-10)/2, minimum 1) vs. the target's
// Constitution-based damage reduction (CON/10, minimum 0), floored at 1.
// It exists so the engine is runnable without an external rule source
// (spec.md §9's Open Question on the exact formula); a deployment may
// substitute any other Evaluator.
var DefaultRules Evaluator = EvaluatorFunc(func(v *View) error {
	strMod := (v.Source.BaseStats.Strength - 10) / 2
	if strMod < 1 {
		strMod = 1
	}
	reduction := v.Target.BaseStats.Constitution / 10
	damage := strMod - reduction
	if damage < 1 {
		damage = 1
	}
	return v.Set("target.damage", float64(damage))
})
