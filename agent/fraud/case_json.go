package fraud

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// caseFields lists the known keys in the order they are written.
var caseFields = []string{
	"caseId",
	"userName",
	"securityQuestion",
	"securityAnswer",
	"merchantName",
	"transactionAmount",
	"transactionCurrency",
	"maskedCard",
	"transactionTime",
	"transactionLocation",
	"transactionCategory",
	"status",
	"outcomeNote",
	"lastUpdated",
}

func (c *Case) textField(key string) *string {
	switch key {
	case "caseId":
		return &c.CaseID
	case "userName":
		return &c.UserName
	case "securityQuestion":
		return &c.SecurityQuestion
	case "securityAnswer":
		return &c.SecurityAnswer
	case "merchantName":
		return &c.MerchantName
	case "transactionCurrency":
		return &c.TransactionCurrency
	case "maskedCard":
		return &c.MaskedCard
	case "transactionTime":
		return &c.TransactionTime
	case "transactionLocation":
		return &c.TransactionLocation
	case "transactionCategory":
		return &c.TransactionCategory
	case "status":
		return (*string)(&c.Status)
	case "outcomeNote":
		return &c.OutcomeNote
	case "lastUpdated":
		return &c.LastUpdated
	default:
		return nil
	}
}

// UnmarshalJSON decodes a case record leniently. A known field holding a
// number or boolean keeps its literal text, so one hand-edited record cannot
// empty the whole collection. An amount that is neither a number nor a string
// is treated as missing.
func (c *Case) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	*c = Case{}
	for key, raw := range fields {
		if key == "transactionAmount" {
			if err := c.TransactionAmount.UnmarshalJSON(raw); err != nil {
				c.TransactionAmount = ""
			}
			continue
		}
		if dst := c.textField(key); dst != nil {
			*dst = scalarText(raw)
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[key] = v
	}
	return nil
}

// MarshalJSON writes the known fields in a fixed order followed by the
// preserved extra keys sorted by name.
func (c Case) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := encodeJSON(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		val, err := encodeJSON(v)
		if err != nil {
			return err
		}
		buf.Write(val)
		return nil
	}

	for _, key := range caseFields {
		var v any
		if key == "transactionAmount" {
			v = c.TransactionAmount
		} else {
			v = *c.textField(key)
		}
		if err := write(key, v); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(c.Extra))
	for key := range c.Extra {
		if c.textField(key) != nil || key == "transactionAmount" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := write(key, c.Extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// scalarText returns the text form of a raw JSON value and never fails.
func scalarText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || string(trimmed) == "null":
		return ""
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
		return strings.Trim(string(trimmed), `"`)
	case trimmed[0] == '{' || trimmed[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
		return string(trimmed)
	default:
		return string(trimmed)
	}
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
