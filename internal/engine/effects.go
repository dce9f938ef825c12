package engine

import (
	"fmt"
	"strconv"

	"github.com/logic-fabricator/fabricator/internal/model"
)

// ApplyEffect mutates world against a single instantiated effect. set
// replaces the key unconditionally; increment/decrement treat an absent
// key as numeric 0.
func ApplyEffect(world map[string]interface{}, e model.Effect) error {
	switch e.Operation {
	case model.OpSet:
		world[e.TargetKey] = e.Value
		return nil
	case model.OpIncrement, model.OpDecrement:
		delta, err := toFloat(e.Value)
		if err != nil {
			return fmt.Errorf("effect %s %s: %w", e.Operation, e.TargetKey, err)
		}
		current := 0.0
		if raw, ok := world[e.TargetKey]; ok {
			current, err = toFloat(raw)
			if err != nil {
				return fmt.Errorf("effect %s %s: existing value is not numeric: %w", e.Operation, e.TargetKey, err)
			}
		}
		if e.Operation == model.OpIncrement {
			world[e.TargetKey] = current + delta
		} else {
			world[e.TargetKey] = current - delta
		}
		return nil
	default:
		return fmt.Errorf("unknown effect operation %q", e.Operation)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}
