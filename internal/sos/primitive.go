package sos

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CLR primitive kinds as they appear in SOS field tables. SOS prints field
// values as raw hex words, so each kind carries its own reinterpretation.
type primitiveKind int

const (
	kindBool primitiveKind = iota
	kindUint8
	kindInt8
	kindUint16
	kindInt16
	kindUint32
	kindInt32
	kindUint64
	kindInt64
	kindFloat32
	kindFloat64
	kindChar
	kindPointer
)

// Both the fully qualified and the C# keyword spellings show up in the Type
// column, depending on whether SOS resolved the method table.
var primitiveKinds = map[string]primitiveKind{
	"System.Boolean": kindBool, "bool": kindBool,
	"System.Byte": kindUint8, "byte": kindUint8,
	"System.SByte": kindInt8, "sbyte": kindInt8,
	"System.UInt16": kindUint16, "ushort": kindUint16,
	"System.Int16": kindInt16, "short": kindInt16,
	"System.UInt32": kindUint32, "uint": kindUint32,
	"System.Int32": kindInt32, "int": kindInt32,
	"System.UInt64": kindUint64, "ulong": kindUint64,
	"System.Int64": kindInt64, "long": kindInt64,
	"System.Single": kindFloat32, "float": kindFloat32,
	"System.Double": kindFloat64, "double": kindFloat64,
	"System.Char": kindChar, "char": kindChar,
	"System.IntPtr": kindPointer, "nint": kindPointer,
	"System.UIntPtr": kindPointer, "nuint": kindPointer,
}

// IsPrimitiveType reports whether typeName is a CLR primitive whose raw hex
// value DecodePrimitive can turn into a readable literal.
func IsPrimitiveType(typeName string) bool {
	_, ok := primitiveKinds[strings.TrimSpace(typeName)]
	return ok
}

// DecodePrimitive decodes a raw SOS hex field value (no 0x prefix) into a
// human-readable literal for the declared primitive type. Unknown types and
// malformed hex fall back to "0x<value>" so the caller always has something
// to display.
func DecodePrimitive(typeName, hexValue string) string {
	fallback := "0x" + hexValue

	kind, ok := primitiveKinds[strings.TrimSpace(typeName)]
	if !ok {
		return fallback
	}

	v, err := strconv.ParseUint(strings.TrimSpace(hexValue), 16, 64)
	if err != nil {
		return fallback
	}

	switch kind {
	case kindBool:
		if v == 0 {
			return "false"
		}
		return "true"

	case kindUint8:
		return strconv.FormatUint(v&0xFF, 10)

	case kindInt8:
		b := int64(v & 0xFF)
		if b >= 0x80 {
			b -= 0x100
		}
		return strconv.FormatInt(b, 10)

	case kindUint16:
		return strconv.FormatUint(v&0xFFFF, 10)

	case kindInt16:
		s := int64(v & 0xFFFF)
		if s >= 0x8000 {
			s -= 0x10000
		}
		return strconv.FormatInt(s, 10)

	case kindUint32:
		return strconv.FormatUint(v&0xFFFFFFFF, 10)

	case kindInt32:
		i := int64(v & 0xFFFFFFFF)
		if i >= 0x80000000 {
			i -= 0x100000000
		}
		return strconv.FormatInt(i, 10)

	case kindUint64:
		return strconv.FormatUint(v, 10)

	case kindInt64:
		// Values above the signed max wrap around to negative.
		return strconv.FormatInt(int64(v), 10)

	case kindFloat32:
		f := math.Float32frombits(uint32(v))
		return strconv.FormatFloat(float64(f), 'g', -1, 64)

	case kindFloat64:
		f := math.Float64frombits(v)
		return strconv.FormatFloat(f, 'g', -1, 64)

	case kindChar:
		c := v & 0xFFFF
		if c >= 32 && c <= 126 {
			return fmt.Sprintf("'%c'", rune(c))
		}
		return fmt.Sprintf("'\\u%04x'", c)

	case kindPointer:
		return fallback
	}

	return fallback
}
