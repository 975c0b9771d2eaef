package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// OneTimeEvent is a single dated expense. Either amount may be set; when both are
// present they are summed, the foreign one converted at that year's rate.
type OneTimeEvent struct {
	Year           int              `json:"year"`
	Label          string           `json:"label,omitempty"`
	AmountDomestic *decimal.Decimal `json:"amountDomestic,omitempty"`
	AmountForeign  *decimal.Decimal `json:"amountForeign,omitempty"`
}

// SkippedEvent records an input entry that could not be turned into a OneTimeEvent.
type SkippedEvent struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// OneTimeEvents is the parsed event list. Malformed entries never fail decoding;
// they land in Skipped and contribute nothing to any year.
type OneTimeEvents struct {
	Events  []OneTimeEvent `json:"events"`
	Skipped []SkippedEvent `json:"skipped,omitempty"`
}

// ForYear returns the events dated in the given year.
func (e OneTimeEvents) ForYear(year int) []OneTimeEvent {
	var out []OneTimeEvent
	for _, ev := range e.Events {
		if ev.Year == year {
			out = append(out, ev)
		}
	}
	return out
}

// DeepCopy returns a copy sharing no pointers with e.
func (e OneTimeEvents) DeepCopy() OneTimeEvents {
	cp := OneTimeEvents{
		Events:  make([]OneTimeEvent, len(e.Events)),
		Skipped: append([]SkippedEvent(nil), e.Skipped...),
	}
	for i, ev := range e.Events {
		if ev.AmountDomestic != nil {
			v := *ev.AmountDomestic
			ev.AmountDomestic = &v
		}
		if ev.AmountForeign != nil {
			v := *ev.AmountForeign
			ev.AmountForeign = &v
		}
		cp.Events[i] = ev
	}
	return cp
}

// UnmarshalYAML decodes a sequence of event mappings leniently.
// Recognised keys: year, label, amount_domestic (alias amount_inr) and
// amount_foreign (alias amount_usd).
func (e *OneTimeEvents) UnmarshalYAML(value *yaml.Node) error {
	*e = OneTimeEvents{}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("one_time_events must be a list (line %d)", value.Line)
	}
	for i, item := range value.Content {
		var raw map[string]any
		if err := item.Decode(&raw); err != nil {
			e.Skipped = append(e.Skipped, SkippedEvent{Index: i, Reason: "entry is not a mapping"})
			continue
		}
		ev, err := ParseOneTimeEvent(raw)
		if err != nil {
			e.Skipped = append(e.Skipped, SkippedEvent{Index: i, Reason: err.Error()})
			continue
		}
		e.Events = append(e.Events, ev)
	}
	return nil
}

// MarshalYAML writes the events back in their input shape. Skipped entries are
// dropped. Amounts are written as decimal strings so they load back exactly.
func (e OneTimeEvents) MarshalYAML() (interface{}, error) {
	out := make([]map[string]any, 0, len(e.Events))
	for _, ev := range e.Events {
		m := map[string]any{"year": ev.Year}
		if ev.Label != "" {
			m["label"] = ev.Label
		}
		if ev.AmountDomestic != nil {
			m["amount_domestic"] = ev.AmountDomestic.String()
		}
		if ev.AmountForeign != nil {
			m["amount_foreign"] = ev.AmountForeign.String()
		}
		out = append(out, m)
	}
	return out, nil
}

// ParseOneTimeEvent converts one loosely typed entry into an event.
// A zero or empty amount counts as absent.
func ParseOneTimeEvent(raw map[string]any) (OneTimeEvent, error) {
	var ev OneTimeEvent
	yv, ok := raw["year"]
	if !ok || yv == nil {
		return ev, fmt.Errorf("missing year")
	}
	year, err := parseYear(yv)
	if err != nil {
		return ev, fmt.Errorf("invalid year %v: %w", yv, err)
	}
	ev.Year = year
	if label, ok := raw["label"]; ok && label != nil {
		ev.Label = fmt.Sprint(label)
	}

	dom, err := firstAmount(raw, "amount_domestic", "amount_inr")
	if err != nil {
		return ev, err
	}
	ev.AmountDomestic = dom
	frn, err := firstAmount(raw, "amount_foreign", "amount_usd")
	if err != nil {
		return ev, err
	}
	ev.AmountForeign = frn
	return ev, nil
}

func firstAmount(raw map[string]any, keys ...string) (*decimal.Decimal, error) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		amt, err := parseAmount(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %v: %w", k, v, err)
		}
		if amt.IsZero() {
			continue
		}
		return &amt, nil
	}
	return nil, nil
}

func parseYear(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case uint64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("not a whole number")
		}
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func parseAmount(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case uint64:
		return decimal.NewFromInt(int64(t)), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number")
		}
		return decimal.NewFromFloat(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", v)
	}
}
