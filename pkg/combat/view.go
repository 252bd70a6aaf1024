package combat

import "duskward/pkg/entity"

// View is the two-entity attribute store an Evaluator reads and writes.
// Attribute names are namespaced "source." or "target." followed by a field
// name, mirroring original_source's AaribaIntegration::get_attribute /
// set_attribute.
type View struct {
	Source *entity.Entity
	Target *entity.Entity

	// DamageDealt is set when the evaluator writes the special "damage"
	// attribute; the tick pipeline reads it back to apply the hit.
	DamageDealt   bool
	DamageAmount  float64
}

// Get reads an attribute. Only "hp", the six base stats, and derived
// "attack_speed"/"speed" are currently readable; unknown names return
// (0, false).
func (v *View) Get(name string) (float64, bool) {
	ns, field, ok := split(name)
	if !ok {
		return 0, false
	}
	target := v.entityFor(ns)
	if target == nil {
		return 0, false
	}
	return readAttribute(target, field)
}

// Set writes an attribute. Only "damage" has an engine-level side effect
// (spec.md §4.1 step 2b); writes to any other name are rejected, matching
// the original's set_attribute which only special-cases "pv"/hp elsewhere
// and this engine's narrower "damage is the only writable attribute"
// contract from spec.md §9.
func (v *View) Set(name string, value float64) error {
	ns, field, ok := split(name)
	if !ok || field != "damage" {
		return errUnwritable(name)
	}
	if ns != "target" {
		return errUnwritable(name)
	}
	v.DamageDealt = true
	v.DamageAmount = value
	return nil
}

func (v *View) entityFor(ns string) *entity.Entity {
	switch ns {
	case "source":
		return v.Source
	case "target":
		return v.Target
	default:
		return nil
	}
}

func split(name string) (ns, field string, ok bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i], name[i+1:], true
		}
	}
	return "", "", false
}

func readAttribute(e *entity.Entity, field string) (float64, bool) {
	switch field {
	case "hp":
		return float64(e.HP), true
	case "level":
		return float64(e.BaseStats.Level), true
	case "strength":
		return float64(e.BaseStats.Strength), true
	case "dexterity":
		return float64(e.BaseStats.Dexterity), true
	case "constitution":
		return float64(e.BaseStats.Constitution), true
	case "intelligence":
		return float64(e.BaseStats.Intelligence), true
	case "presence":
		return float64(e.BaseStats.Presence), true
	case "wisdom":
		return float64(e.BaseStats.Wisdom), true
	case "speed":
		return e.CurrentStats.Speed, true
	case "attack_speed":
		return e.CurrentStats.AttackSpeed, true
	default:
		return 0, false
	}
}

type unwritableError struct{ name string }

func (e unwritableError) Error() string { return "combat: attribute not writable: " + e.name }

func errUnwritable(name string) error { return unwritableError{name: name} }
