package expr

import (
	"fmt"
	"strconv"
)

// EvaluateCondition parses and evaluates a pure-literal condition
// expression (the string must already have had its ${...} sub-references
// interpolated away) and returns its truthy boolean value (§4.1).
func EvaluateCondition(src string) (bool, error) {
	n, err := parse(src)
	if err != nil {
		return false, err
	}
	v, err := evalNode(n)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

func evalNode(n node) (any, error) {
	switch t := n.(type) {
	case *literalNode:
		return t.val, nil
	case *unaryNode:
		v, err := evalNode(t.x)
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil
	case *binaryNode:
		return evalBinary(t)
	default:
		return nil, fmt.Errorf("unreachable: unknown node type %T", n)
	}
}

func evalBinary(b *binaryNode) (any, error) {
	switch b.op {
	case tOr:
		left, err := evalNode(b.l)
		if err != nil {
			return nil, err
		}
		if truthy(left) {
			return true, nil
		}
		right, err := evalNode(b.r)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil

	case tAnd:
		left, err := evalNode(b.l)
		if err != nil {
			return nil, err
		}
		if !truthy(left) {
			return false, nil
		}
		right, err := evalNode(b.r)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil

	case tEq, tNeq:
		left, err := evalNode(b.l)
		if err != nil {
			return nil, err
		}
		right, err := evalNode(b.r)
		if err != nil {
			return nil, err
		}
		eq := looseEqual(left, right)
		if b.op == tNeq {
			return !eq, nil
		}
		return eq, nil

	case tGt, tLt, tGte, tLte:
		left, err := evalNode(b.l)
		if err != nil {
			return nil, err
		}
		right, err := evalNode(b.r)
		if err != nil {
			return nil, err
		}
		ln, rn := orderedNumber(left), orderedNumber(right)
		switch b.op {
		case tGt:
			return ln > rn, nil
		case tLt:
			return ln < rn, nil
		case tGte:
			return ln >= rn, nil
		default:
			return ln <= rn, nil
		}

	default:
		return nil, fmt.Errorf("unreachable: unknown binary operator")
	}
}

// truthy implements the Boolean context rule of §4.1: empty string, 0,
// false, and null are falsy; everything else is truthy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// asNumber attempts the "string-to-number by standard parsing" coercion
// of §4.1. An empty string reads as 0. ok is false when v has no
// sensible numeric reading.
func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		if x == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// orderedNumber is used for >, <, >=, <=: both operands are coerced to
// number, and a non-numeric value coerces to 0 (§4.1).
func orderedNumber(v any) float64 {
	n, ok := asNumber(v)
	if !ok {
		return 0
	}
	return n
}

// looseEqual implements ==/!= per §4.1: consistent numeric coercion when
// both sides have a numeric reading, string comparison ("non-parsable
// strings compare as strings") otherwise.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if aok && bok {
		return an == bn
	}
	return displayString(a) == displayString(b)
}

func displayString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}
