package phpserial

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrSyntax reports malformed serialized text.
	ErrSyntax = errors.New("phpserial: syntax error")
	// ErrUnsupported reports a valid construct this package does not decode
	// (references, custom serialization, enums).
	ErrUnsupported = errors.New("phpserial: unsupported construct")
)

// Unmarshal decodes serialized text.
//
// Arrays whose keys are exactly 0..n-1 in order decode to []any, every other
// array and every object decodes to map[string]any. Integers decode to int64
// and floats to float64. Object property names lose their visibility
// prefixes.
func Unmarshal(text string) (any, error) {
	d := &decoder{src: text}
	value, err := d.value()
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.src) {
		return nil, d.errorf("trailing data")
	}
	return value, nil
}

type decoder struct {
	src string
	pos int
}

func (d *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, d.pos, fmt.Sprintf(format, args...))
}

func (d *decoder) value() (any, error) {
	if d.pos >= len(d.src) {
		return nil, d.errorf("unexpected end of input")
	}
	token := d.src[d.pos]
	switch token {
	case 'N':
		d.pos++
		if err := d.expect(';'); err != nil {
			return nil, err
		}
		return nil, nil
	case 'b':
		raw, err := d.scalar()
		if err != nil {
			return nil, err
		}
		switch raw {
		case "0":
			return false, nil
		case "1":
			return true, nil
		default:
			return nil, d.errorf("invalid boolean %q", raw)
		}
	case 'i':
		raw, err := d.scalar()
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, d.errorf("invalid integer %q", raw)
		}
		return n, nil
	case 'd':
		raw, err := d.scalar()
		if err != nil {
			return nil, err
		}
		return parseFloat(raw, d)
	case 's':
		return d.stringValue()
	case 'a':
		return d.array()
	case 'O':
		return d.object()
	case 'r', 'R', 'C', 'E':
		return nil, fmt.Errorf("%w: %q at offset %d", ErrUnsupported, token, d.pos)
	default:
		return nil, d.errorf("unknown type %q", token)
	}
}

func parseFloat(raw string, d *decoder) (any, error) {
	switch raw {
	case "NAN":
		return math.NaN(), nil
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, d.errorf("invalid float %q", raw)
	}
	return f, nil
}

// scalar reads "<t>:<raw>;" and returns raw.
func (d *decoder) scalar() (string, error) {
	d.pos++
	if err := d.expect(':'); err != nil {
		return "", err
	}
	end := strings.IndexByte(d.src[d.pos:], ';')
	if end == -1 {
		return "", d.errorf("missing ';'")
	}
	raw := d.src[d.pos : d.pos+end]
	d.pos += end + 1
	return raw, nil
}

func (d *decoder) length() (int, error) {
	end := strings.IndexByte(d.src[d.pos:], ':')
	if end == -1 {
		return 0, d.errorf("missing length")
	}
	n, err := strconv.Atoi(d.src[d.pos : d.pos+end])
	if err != nil || n < 0 {
		return 0, d.errorf("invalid length %q", d.src[d.pos:d.pos+end])
	}
	d.pos += end + 1
	return n, nil
}

// quoted reads `"<n bytes>"`.
func (d *decoder) quoted(n int) (string, error) {
	if err := d.expect('"'); err != nil {
		return "", err
	}
	if d.pos+n > len(d.src) {
		return "", d.errorf("string length %d exceeds input", n)
	}
	out := d.src[d.pos : d.pos+n]
	d.pos += n
	if err := d.expect('"'); err != nil {
		return "", err
	}
	return out, nil
}

func (d *decoder) stringValue() (string, error) {
	d.pos++
	if err := d.expect(':'); err != nil {
		return "", err
	}
	n, err := d.length()
	if err != nil {
		return "", err
	}
	out, err := d.quoted(n)
	if err != nil {
		return "", err
	}
	if err := d.expect(';'); err != nil {
		return "", err
	}
	return out, nil
}

func (d *decoder) array() (any, error) {
	d.pos++
	if err := d.expect(':'); err != nil {
		return nil, err
	}
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	keys, values, err := d.members(n)
	if err != nil {
		return nil, err
	}

	if isList(keys) {
		return values, nil
	}
	out := make(map[string]any, n)
	for i, key := range keys {
		out[key] = values[i]
	}
	return out, nil
}

func (d *decoder) object() (any, error) {
	d.pos++
	if err := d.expect(':'); err != nil {
		return nil, err
	}
	nameLen, err := d.length()
	if err != nil {
		return nil, err
	}
	if _, err := d.quoted(nameLen); err != nil {
		return nil, err
	}
	if err := d.expect(':'); err != nil {
		return nil, err
	}
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	keys, values, err := d.members(n)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, n)
	for i, key := range keys {
		out[propertyName(key)] = values[i]
	}
	return out, nil
}

// members reads "{k;v;...}" holding n pairs. Keys are returned as text.
func (d *decoder) members(n int) ([]string, []any, error) {
	if err := d.expect('{'); err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, n)
	values := make([]any, 0, n)
	for i := 0; i < n; i++ {
		key, err := d.key()
		if err != nil {
			return nil, nil, err
		}
		value, err := d.value()
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, value)
	}
	if err := d.expect('}'); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func (d *decoder) key() (string, error) {
	if d.pos >= len(d.src) {
		return "", d.errorf("unexpected end of input")
	}
	switch d.src[d.pos] {
	case 'i':
		raw, err := d.scalar()
		if err != nil {
			return "", err
		}
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return "", d.errorf("invalid integer key %q", raw)
		}
		return raw, nil
	case 's':
		return d.stringValue()
	default:
		return "", d.errorf("invalid key type %q", d.src[d.pos])
	}
}

func (d *decoder) expect(ch byte) error {
	if d.pos >= len(d.src) || d.src[d.pos] != ch {
		return d.errorf("expected %q", ch)
	}
	d.pos++
	return nil
}

func isList(keys []string) bool {
	for i, key := range keys {
		if key != strconv.Itoa(i) {
			return false
		}
	}
	return true
}

// propertyName strips the "\x00*\x00" (protected) and "\x00Class\x00"
// (private) prefixes from serialized property names.
func propertyName(key string) string {
	if !strings.HasPrefix(key, "\x00") {
		return key
	}
	if idx := strings.IndexByte(key[1:], 0); idx != -1 {
		return key[idx+2:]
	}
	return key
}
