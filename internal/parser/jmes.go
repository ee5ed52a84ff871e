package parser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmespath/go-jmespath"
)

// JMESPath reshapes message bodies with a compiled JMESPath expression.
// The body is decoded as JSON when possible; otherwise it is wrapped as
// {"message": raw} so the expression can still address it. The expression
// must yield an object or an array of objects; each object becomes one
// record's fields. A "time" field holding an RFC3339 string or epoch
// seconds number is lifted out as the record's event time. A null or empty
// result drops the message silently.
type JMESPath struct {
	expr *jmespath.JMESPath
}

// NewJMESPath compiles the expression.
func NewJMESPath(expression string) (*JMESPath, error) {
	expr, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("compiling JMESPath expression: %w", err)
	}
	return &JMESPath{expr: expr}, nil
}

func (p *JMESPath) Parse(body []byte) ([]Record, error) {
	var input any
	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		input = decoded
	} else {
		input = map[string]any{"message": string(body)}
	}

	res, err := p.expr.Search(input)
	if err != nil {
		return nil, fmt.Errorf("jmespath search failed: %w", err)
	}
	return toRecords(res)
}

func toRecords(res any) ([]Record, error) {
	switch v := res.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []Record{recordFrom(v)}, nil
	case []any:
		records := make([]Record, 0, len(v))
		for _, elem := range v {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("jmespath result element is %T, want object", elem)
			}
			records = append(records, recordFrom(m))
		}
		return records, nil
	default:
		return nil, fmt.Errorf("jmespath result is %T, want object or array of objects", res)
	}
}

func recordFrom(fields map[string]any) Record {
	rec := Record{Fields: fields}
	switch t := fields["time"].(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			rec.Time = parsed
			delete(fields, "time")
		}
	case float64:
		rec.Time = time.Unix(int64(t), 0)
		delete(fields, "time")
	}
	return rec
}
