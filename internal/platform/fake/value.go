package fake

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/axsim/internal/ax"
)

// ParseValue converts raw into a Value of the kind attr holds. raw is what a
// YAML or JSON decoder produces: bools, numbers, strings and lists.
// Geometry accepts a list of numbers or a comma-separated string; element
// attributes take references understood by Resolve.
func (d *Desktop) ParseValue(attr ax.Attribute, raw any) (ax.Value, error) {
	switch kind := attr.Kind(); kind {
	case ax.KindBool:
		b, err := toBool(raw)
		if err != nil {
			return ax.Value{}, mismatch(attr, raw, err)
		}
		return ax.BoolValue(b), nil
	case ax.KindString:
		switch v := raw.(type) {
		case string:
			return ax.StringValue(v), nil
		case nil:
			return ax.Value{}, mismatch(attr, raw, nil)
		default:
			return ax.StringValue(fmt.Sprint(v)), nil
		}
	case ax.KindPoint:
		n, err := toFloats(raw, 2)
		if err != nil {
			return ax.Value{}, mismatch(attr, raw, err)
		}
		return ax.PointValue(ax.Point{X: n[0], Y: n[1]}), nil
	case ax.KindSize:
		n, err := toFloats(raw, 2)
		if err != nil {
			return ax.Value{}, mismatch(attr, raw, err)
		}
		return ax.SizeValue(ax.Size{Width: n[0], Height: n[1]}), nil
	case ax.KindRect:
		n, err := toFloats(raw, 4)
		if err != nil {
			return ax.Value{}, mismatch(attr, raw, err)
		}
		return ax.RectValue(ax.R(n[0], n[1], n[2], n[3])), nil
	case ax.KindElement:
		ref, ok := raw.(string)
		if !ok {
			return ax.Value{}, mismatch(attr, raw, nil)
		}
		el, err := d.Resolve(ref)
		if err != nil {
			return ax.Value{}, err
		}
		return ax.ElementValue(el), nil
	case ax.KindElements:
		items, ok := raw.([]any)
		if !ok {
			return ax.Value{}, mismatch(attr, raw, nil)
		}
		els := make([]ax.UIElement, 0, len(items))
		for _, item := range items {
			ref, ok := item.(string)
			if !ok {
				return ax.Value{}, mismatch(attr, raw, nil)
			}
			el, err := d.Resolve(ref)
			if err != nil {
				return ax.Value{}, err
			}
			els = append(els, el)
		}
		return ax.ElementsValue(els), nil
	default:
		return ax.Value{}, fmt.Errorf("unknown attribute %q", attr)
	}
}

func mismatch(attr ax.Attribute, raw any, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s value %v: %v", ax.ErrTypeMismatch, attr, raw, cause)
	}
	return fmt.Errorf("%w: %s does not accept %T", ax.ErrTypeMismatch, attr, raw)
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return false, errors.New("not a bool")
	}
}

func toFloats(raw any, n int) ([]float64, error) {
	var items []any
	switch v := raw.(type) {
	case string:
		for _, p := range strings.Split(v, ",") {
			items = append(items, strings.TrimSpace(p))
		}
	case []any:
		items = v
	case []int:
		for _, i := range v {
			items = append(items, i)
		}
	case []float64:
		for _, f := range v {
			items = append(items, f)
		}
	default:
		return nil, errors.New("not a list of numbers")
	}
	if len(items) != n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(items))
	}
	out := make([]float64, n)
	for i, item := range items {
		f, err := toFloat(item)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("%v is not a number", raw)
	}
}
