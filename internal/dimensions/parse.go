package dimensions

import (
	"fmt"
	"strings"

	"github.com/implydata/imply-eventgenerator/internal/distributions"
)

// ParseList builds a Dimension for every element of raws, in order.
func ParseList(raws []interface{}, sampler *distributions.Sampler, clk distributions.Clock) ([]Dimension, error) {
	out := make([]Dimension, 0, len(raws))
	for i, raw := range raws {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("dimensions[%d]: must be an object", i)
		}
		d, err := Parse(obj, sampler, clk)
		if err != nil {
			return nil, fmt.Errorf("dimensions[%d]: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Parse builds a single Dimension from its decoded JSON spec, dispatching
// on the "kind" field. sampler is consulted immediately if the dimension
// has a cardinality pool (materialized once, here, via rejection
// sampling); clk is passed through to every distribution parsed here and is
// only consulted by gmm_temporal ones.
func Parse(raw map[string]interface{}, sampler *distributions.Sampler, clk distributions.Clock) (Dimension, error) {
	name, _ := raw["name"].(string)
	kindRaw, ok := raw["kind"]
	if !ok {
		return nil, fmt.Errorf("missing \"kind\"")
	}
	kind, ok := kindRaw.(string)
	if !ok {
		return nil, fmt.Errorf("\"kind\" must be a string")
	}

	base, err := parseBase(raw, name, sampler, kind, clk)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(kind) {
	case "int", "integer":
		dist, err := requireDist(raw, "distribution", clk)
		if err != nil {
			return nil, err
		}
		if base.poolCardinality > 0 {
			pool, err := buildPool(base.poolCardinality, func() interface{} { return int64(dist.Sample(sampler)) }, intKey)
			if err != nil {
				return nil, err
			}
			base.pool = pool
		}
		return &Int{Base: base.Base, Dist: dist}, nil

	case "float":
		dist, err := requireDist(raw, "distribution", clk)
		if err != nil {
			return nil, err
		}
		precision := -1
		if p, ok := raw["precision"].(float64); ok {
			precision = int(p)
		}
		if base.poolCardinality > 0 {
			pool, err := buildPool(base.poolCardinality, func() interface{} { return dist.Sample(sampler) }, floatKey)
			if err != nil {
				return nil, err
			}
			base.pool = pool
		}
		return &Float{Base: base.Base, Dist: dist, Precision: precision}, nil

	case "string":
		lenDist, err := requireDist(raw, "length_distribution", clk)
		if err != nil {
			return nil, err
		}
		chars, _ := raw["chars"].(string)
		s := &String{Base: base.Base, LengthDist: lenDist, Chars: chars}
		if base.poolCardinality > 0 {
			pool, err := buildPool(base.poolCardinality, func() interface{} {
				return s.sampleRaw(sampler)
			}, stringKey)
			if err != nil {
				return nil, err
			}
			base.pool = pool
			s.Base = base.Base
		}
		return s, nil

	case "timestamp":
		dist, err := requireTimestampDist(raw, "distribution", clk)
		if err != nil {
			return nil, err
		}
		return &Timestamp{Base: base.Base, Dist: dist}, nil

	case "ipaddress", "ip":
		dist, err := requireDist(raw, "distribution", clk)
		if err != nil {
			return nil, err
		}
		if base.poolCardinality > 0 {
			pool, err := buildPool(base.poolCardinality, func() interface{} { return uint32(int64(dist.Sample(sampler))) }, uint32Key)
			if err != nil {
				return nil, err
			}
			base.pool = pool
		}
		return &IPAddress{Base: base.Base, Dist: dist}, nil

	case "enum":
		valuesRaw, ok := raw["values"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("enum: missing \"values\"")
		}
		values := make([]string, 0, len(valuesRaw))
		for _, v := range valuesRaw {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("enum: \"values\" must be strings")
			}
			values = append(values, s)
		}
		selector, err := requireDist(raw, "selector_distribution", clk)
		if err != nil {
			return nil, err
		}
		e := &Enum{Base: base.Base, Values: values, SelectorDist: selector}
		if base.poolCardinality > 0 {
			pool, err := buildPool(base.poolCardinality, func() interface{} {
				idx := distributions.ClampIndex(int(selector.Sample(sampler)), len(values))
				return values[idx]
			}, stringKey)
			if err != nil {
				return nil, err
			}
			base.pool = pool
			e.Base = base.Base
		}
		return e, nil

	case "counter":
		start := int64(0)
		if v, ok := raw["start"].(float64); ok {
			start = int64(v)
		}
		increment := int64(1)
		if v, ok := raw["increment"].(float64); ok {
			increment = int64(v)
		}
		return NewCounter(name, start, increment), nil

	case "object":
		childrenRaw, ok := raw["dimensions"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("object: missing \"dimensions\"")
		}
		children, err := ParseList(childrenRaw, sampler, clk)
		if err != nil {
			return nil, err
		}
		return &Object{Base: base.Base, Children: children}, nil

	case "list":
		lenDist, err := requireDist(raw, "length_distribution", clk)
		if err != nil {
			return nil, err
		}
		selDist, err := requireDist(raw, "selection_distribution", clk)
		if err != nil {
			return nil, err
		}
		elementsRaw, ok := raw["elements"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("list: missing \"elements\"")
		}
		elements, err := ParseList(elementsRaw, sampler, clk)
		if err != nil {
			return nil, err
		}
		return &List{Base: base.Base, LengthDist: lenDist, SelectionDist: selDist, Elements: elements}, nil

	case "variable":
		ref, _ := raw["variable"].(string)
		if ref == "" {
			ref = name
		}
		return &Variable{Base: base.Base, RefName: ref}, nil

	default:
		return nil, fmt.Errorf("unknown dimension kind %q", kind)
	}
}

// parsedBase holds Base plus the raw cardinality count (needed after Base
// is constructed to know how many pool entries to build).
type parsedBase struct {
	Base
	poolCardinality int
}

func parseBase(raw map[string]interface{}, name string, sampler *distributions.Sampler, kind string, clk distributions.Clock) (*parsedBase, error) {
	pb := &parsedBase{Base: Base{name: name}}

	if v, ok := raw["percent_nulls"].(float64); ok {
		pb.percentNulls = v / 100
	}
	if v, ok := raw["percent_missing"].(float64); ok {
		pb.percentMissing = v / 100
	}

	cardRaw, hasCard := raw["cardinality"]
	if !hasCard {
		return pb, nil
	}
	cardF, ok := cardRaw.(float64)
	if !ok {
		return nil, fmt.Errorf("\"cardinality\" must be a number")
	}
	card := int(cardF)
	if card <= 0 {
		return pb, nil
	}

	cardDistRaw, ok := raw["cardinality_distribution"]
	if !ok {
		return nil, fmt.Errorf("cardinality %d requires \"cardinality_distribution\"", card)
	}
	cardDistObj, ok := cardDistRaw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("\"cardinality_distribution\" must be an object")
	}
	cardDist, err := distributions.Parse(cardDistObj, clk)
	if err != nil {
		return nil, fmt.Errorf("cardinality_distribution: %w", err)
	}
	pb.poolDist = cardDist
	pb.poolCardinality = card
	return pb, nil
}

func requireDist(raw map[string]interface{}, key string, clk distributions.Clock) (distributions.Distribution, error) {
	distRaw, ok := raw[key]
	if !ok {
		return nil, fmt.Errorf("missing %q", key)
	}
	obj, ok := distRaw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%q must be an object", key)
	}
	return distributions.Parse(obj, clk)
}

func requireTimestampDist(raw map[string]interface{}, key string, clk distributions.Clock) (distributions.Distribution, error) {
	distRaw, ok := raw[key]
	if !ok {
		return nil, fmt.Errorf("missing %q", key)
	}
	obj, ok := distRaw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%q must be an object", key)
	}
	return distributions.ParseTimestamp(obj, clk)
}

func intKey(v interface{}) string    { return fmt.Sprintf("%d", v.(int64)) }
func floatKey(v interface{}) string  { return fmt.Sprintf("%g", v.(float64)) }
func uint32Key(v interface{}) string { return fmt.Sprintf("%d", v.(uint32)) }
func stringKey(v interface{}) string { return v.(string) }

// sampleRaw draws one un-pooled string sample, used only while
// materializing a cardinality pool for a string dimension (the pool must
// be built from the same character/length distributions the dimension
// would otherwise sample from directly).
func (d *String) sampleRaw(s *distributions.Sampler) interface{} {
	n := int(d.LengthDist.Sample(s))
	if n < 0 {
		n = 0
	}
	alphabet := d.Chars
	if alphabet == "" {
		alphabet = defaultPrintableASCII
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[s.Intn(len(alphabet))]
	}
	return string(buf)
}
