package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/shopspring/decimal"
	"github.com/target/printbroker-api/internal/domain/model"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

// fieldSetter assigns one mapped payload value onto a creation request.
type fieldSetter func(req *model.CreateJobRequest, v any) error

var webhookFields = map[string]fieldSetter{
	"external_id":  setStringPtr(func(r *model.CreateJobRequest) **string { return &r.ExternalID }),
	"title":        setString(func(r *model.CreateJobRequest) *string { return &r.Title }),
	"customer_id":  setString(func(r *model.CreateJobRequest) *string { return &r.CustomerID }),
	"vendor_id":    setStringPtr(func(r *model.CreateJobRequest) **string { return &r.VendorID }),
	"size_name":    setStringPtr(func(r *model.CreateJobRequest) **string { return &r.SizeName }),
	"mail_format":  setStringPtr(func(r *model.CreateJobRequest) **string { return &r.MailFormat }),
	"job_type":     setStringPtr(func(r *model.CreateJobRequest) **string { return &r.JobType }),
	"due_date":     setTime(func(r *model.CreateJobRequest) **time.Time { return &r.DueDate }),
	"mail_date":    setTime(func(r *model.CreateJobRequest) **time.Time { return &r.MailDate }),
	"paper_source": func(r *model.CreateJobRequest, v any) error {
		s, err := asString(v)
		r.PaperSource = model.PaperSource(s)
		return err
	},
	"routing_type": func(r *model.CreateJobRequest, v any) error {
		s, err := asString(v)
		r.RoutingType = model.RoutingType(s)
		return err
	},
	"quantity": func(r *model.CreateJobRequest, v any) error {
		n, err := asInt(v)
		r.Quantity = n
		return err
	},
	"sell_price": func(r *model.CreateJobRequest, v any) error {
		d, err := asDecimal(v)
		r.SellPrice = d
		return err
	},
	"specs": func(r *model.CreateJobRequest, v any) error {
		raw, err := json.Marshal(v)
		r.Specs = raw
		return err
	},
	"components": func(r *model.CreateJobRequest, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &r.Components)
	},
}

// WebhookFieldNames lists the job request fields a mapping may target.
func WebhookFieldNames() []string {
	out := make([]string, 0, len(webhookFields))
	for k := range webhookFields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type mappedField struct {
	name string
	expr string
	set  fieldSetter
}

// payloadMapper turns a portal payload into a CreateJobRequest with JMESPath expressions.
type payloadMapper struct {
	fields []mappedField
}

// newPayloadMapper compiles every expression up front so a bad mapping fails at startup.
func newPayloadMapper(mapping map[string]string) (*payloadMapper, error) {
	m := &payloadMapper{}
	for _, name := range sortedKeys(mapping) {
		expr := strings.TrimSpace(mapping[name])
		set, ok := webhookFields[name]
		if !ok {
			return nil, fmt.Errorf("webhook mapping: unknown field %q (known: %s)",
				name, strings.Join(WebhookFieldNames(), ", "))
		}
		if expr == "" {
			continue
		}
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("webhook mapping: field %q: invalid expression %q: %w", name, expr, err)
		}
		m.fields = append(m.fields, mappedField{name: name, expr: expr, set: set})
	}
	return m, nil
}

// Map evaluates each expression against payload. Missing values leave the field unset.
func (m *payloadMapper) Map(payload any) (*model.CreateJobRequest, error) {
	req := &model.CreateJobRequest{}
	for _, f := range m.fields {
		v, err := jmespath.Search(f.expr, payload)
		if err != nil {
			return nil, apperrors.ValidationField(f.name, fmt.Sprintf("evaluate %q: %v", f.expr, err))
		}
		if v == nil {
			continue
		}
		if err := f.set(req, v); err != nil {
			return nil, apperrors.ValidationField(f.name, fmt.Sprintf("payload value at %q: %v", f.expr, err))
		}
	}
	return req, nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func setString(field func(*model.CreateJobRequest) *string) fieldSetter {
	return func(r *model.CreateJobRequest, v any) error {
		s, err := asString(v)
		*field(r) = s
		return err
	}
}

func setStringPtr(field func(*model.CreateJobRequest) **string) fieldSetter {
	return func(r *model.CreateJobRequest, v any) error {
		s, err := asString(v)
		if err != nil || strings.TrimSpace(s) == "" {
			return err
		}
		*field(r) = &s
		return nil
	}
}

func setTime(field func(*model.CreateJobRequest) **time.Time) fieldSetter {
	return func(r *model.CreateJobRequest, v any) error {
		s, err := asString(v)
		if err != nil || strings.TrimSpace(s) == "" {
			return err
		}
		t, err := parseDate(s)
		if err != nil {
			return err
		}
		*field(r) = &t
		return nil
	}
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %s", t)
		}
		return int(n), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("expected an integer, got %v", t)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case json.Number:
		return decimal.NewFromString(t.String())
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(t))
	default:
		return decimal.Zero, fmt.Errorf("expected a number, got %T", v)
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected an RFC 3339 timestamp or YYYY-MM-DD date, got %q", s)
	}
	return t, nil
}
