package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/wippyai/structview/errors"
)

// ParseJSON decodes the wire-format description language:
//
//	scalar:  "i8" | "u8" | "i16" | "u16" | "i32" | "u32" | "f32" | "f64" | "i64" | "u64"
//	struct:  {"struct": {name: [desc, {"offset"?, "align"?, "size"?}?], ...}, "align"?, "size"?}
//	array:   {"array": [desc, count | "unsized", {"stride"?}?]}
//
// Struct member order is preserved exactly as written; it defines the
// default packing order.
func ParseJSON(data []byte) (Desc, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	d, err := parseDesc(dec, nil)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Detail("trailing data after description").
			Build()
	}
	return d, nil
}

func parseDesc(dec *json.Decoder, path []string) (Desc, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, parseErr(path, err, "reading description")
	}

	switch t := tok.(type) {
	case string:
		k, ok := KindFromTag(t)
		if !ok {
			return nil, errors.New(errors.PhaseParse, errors.KindUnknownKind).
				Path(path...).
				Value(t).
				Detail("unknown scalar kind %q", t).
				Build()
		}
		return k, nil

	case json.Delim:
		if t != '{' {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(path...).
				Detail("description must be a kind tag or an object, got %q", t.String()).
				Build()
		}
		return parseCompound(dec, path)

	default:
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Path(path...).
			Detail("description must be a kind tag or an object, got %v", tok).
			Build()
	}
}

func parseCompound(dec *json.Decoder, path []string) (Desc, error) {
	var (
		members     []Member
		arr         *Array
		align, size *uint32
		isStruct    bool
	)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, parseErr(path, err, "reading description key")
		}
		key, _ := keyTok.(string)

		switch key {
		case "struct":
			isStruct = true
			members, err = parseMembers(dec, path)
		case "array":
			arr, err = parseArray(dec, path)
		case "align":
			align, err = parseU32(dec, path, "align")
		case "size":
			size, err = parseU32(dec, path, "size")
		default:
			err = errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(path...).
				Detail("unknown description key %q", key).
				Build()
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, parseErr(path, err, "reading description")
	}

	switch {
	case arr != nil && (isStruct || align != nil || size != nil):
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Path(path...).
			Detail("array descriptions take only the array key").
			Build()
	case arr != nil:
		return arr, nil
	case isStruct:
		return &Struct{Members: members, Align: align, Size: size}, nil
	default:
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Path(path...).
			Detail("description object needs a struct or array key").
			Build()
	}
}

func parseMembers(dec *json.Decoder, path []string) ([]Member, error) {
	if err := expectDelim(dec, '{', path); err != nil {
		return nil, err
	}

	var members []Member
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return nil, parseErr(path, err, "reading member name")
		}
		name, _ := nameTok.(string)
		mpath := append(append([]string{}, path...), name)

		if err := expectDelim(dec, '[', mpath); err != nil {
			return nil, err
		}
		typ, err := parseDesc(dec, mpath)
		if err != nil {
			return nil, err
		}

		m := Member{Name: name, Type: typ}
		if dec.More() {
			var info struct {
				Offset *uint32 `json:"offset"`
				Align  *uint32 `json:"align"`
				Size   *uint32 `json:"size"`
			}
			if err := dec.Decode(&info); err != nil {
				return nil, parseErr(mpath, err, "reading member info")
			}
			m.Offset, m.Align, m.Size = info.Offset, info.Align, info.Size
		}
		if err := expectDelim(dec, ']', mpath); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, parseErr(path, err, "reading members")
	}
	return members, nil
}

func parseArray(dec *json.Decoder, path []string) (*Array, error) {
	if err := expectDelim(dec, '[', path); err != nil {
		return nil, err
	}

	elem, err := parseDesc(dec, append(append([]string{}, path...), "[elem]"))
	if err != nil {
		return nil, err
	}

	lenTok, err := dec.Token()
	if err != nil {
		return nil, parseErr(path, err, "reading array length")
	}

	count := 0
	switch v := lenTok.(type) {
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 32)
		if err != nil || n < 0 {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidCount).
				Path(path...).
				Value(v.String()).
				Detail("array length must be a non-negative integer or \"unsized\"").
				Build()
		}
		count = int(n)
	case string:
		if v != "unsized" {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidCount).
				Path(path...).
				Value(v).
				Detail("array length must be a non-negative integer or \"unsized\"").
				Build()
		}
		count = Unsized
	default:
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidCount).
			Path(path...).
			Detail("array length must be a non-negative integer or \"unsized\"").
			Build()
	}

	a := &Array{Elem: elem, Count: count}
	if dec.More() {
		var opts struct {
			Stride *uint32 `json:"stride"`
		}
		if err := dec.Decode(&opts); err != nil {
			return nil, parseErr(path, err, "reading array options")
		}
		a.Stride = opts.Stride
	}
	if err := expectDelim(dec, ']', path); err != nil {
		return nil, err
	}
	return a, nil
}

func parseU32(dec *json.Decoder, path []string, what string) (*uint32, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, parseErr(path, err, "reading "+what)
	}
	num, ok := tok.(json.Number)
	if !ok {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Path(path...).
			Detail("%s must be a non-negative integer", what).
			Build()
	}
	n, err := strconv.ParseUint(num.String(), 10, 32)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Path(path...).
			Value(num.String()).
			Detail("%s must be a non-negative integer", what).
			Build()
	}
	v := uint32(n)
	return &v, nil
}

func expectDelim(dec *json.Decoder, want json.Delim, path []string) error {
	tok, err := dec.Token()
	if err != nil {
		return parseErr(path, err, fmt.Sprintf("expecting %q", want.String()))
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.New(errors.PhaseParse, errors.KindInvalidData).
			Path(path...).
			Detail("expected %q, got %v", want.String(), tok).
			Build()
	}
	return nil
}

func parseErr(path []string, cause error, context string) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Path(path...).
		Cause(cause).
		Detail("%s", context).
		Build()
}

// MarshalDesc renders desc back into the wire format, preserving member
// order. The output round-trips through ParseJSON.
func MarshalDesc(d Desc) ([]byte, error) {
	var b bytes.Buffer
	if err := writeDesc(&b, d); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeDesc(b *bytes.Buffer, d Desc) error {
	switch t := d.(type) {
	case Kind:
		if !t.Valid() {
			return errors.New(errors.PhaseParse, errors.KindUnknownKind).
				Detail("unknown scalar kind %d", uint8(t)).
				Build()
		}
		b.WriteString(strconv.Quote(t.String()))

	case *Struct:
		b.WriteString(`{"struct":{`)
		for i, m := range t.Members {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(m.Name))
			b.WriteString(":[")
			if err := writeDesc(b, m.Type); err != nil {
				return err
			}
			if m.Offset != nil || m.Align != nil || m.Size != nil {
				b.WriteString(",{")
				writeOpts(b, "offset", m.Offset, "align", m.Align, "size", m.Size)
				b.WriteByte('}')
			}
			b.WriteByte(']')
		}
		b.WriteByte('}')
		if t.Align != nil {
			fmt.Fprintf(b, `,"align":%d`, *t.Align)
		}
		if t.Size != nil {
			fmt.Fprintf(b, `,"size":%d`, *t.Size)
		}
		b.WriteByte('}')

	case *Array:
		b.WriteString(`{"array":[`)
		if err := writeDesc(b, t.Elem); err != nil {
			return err
		}
		if t.Count == Unsized {
			b.WriteString(`,"unsized"`)
		} else {
			fmt.Fprintf(b, ",%d", t.Count)
		}
		if t.Stride != nil {
			fmt.Fprintf(b, `,{"stride":%d}`, *t.Stride)
		}
		b.WriteString("]}")

	default:
		return errors.New(errors.PhaseParse, errors.KindInvalidData).
			Detail("unrecognized description type %T", d).
			Build()
	}
	return nil
}

func writeOpts(b *bytes.Buffer, kvs ...any) {
	first := true
	for i := 0; i+1 < len(kvs); i += 2 {
		name := kvs[i].(string)
		val := kvs[i+1].(*uint32)
		if val == nil {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprintf(b, `"%s":%d`, name, *val)
	}
}
