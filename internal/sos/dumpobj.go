package sos

import (
	"regexp"
	"strings"
)

// UnknownType marks a field whose Type column was empty after tokenization.
const UnknownType = "<unknown>"

// ObjectField is one row of a dumpobj field table.
type ObjectField struct {
	MethodTable string
	Name        string
	Type        string
	Offset      string
	Value       string
	IsStatic    bool
	IsReference bool
	IsPrimitive bool
	// Decoded holds the human-readable value when IsPrimitive is set.
	Decoded string
}

// ObjectReport is the parsed result of one dumpobj invocation: the free-text
// header (object name, method table, size) and the field table.
type ObjectReport struct {
	Header []string
	Fields []ObjectField
}

// ErrorReport returns the report used when the analyzer invocation itself
// failed. The UI renders the header lines as-is, so the failure stays scoped
// to this one object instead of surfacing as a broken view.
func ErrorReport() *ObjectReport {
	return &ObjectReport{Header: []string{"Error: Command failed"}}
}

const fieldsMarker = "Fields:"

//         MT    Field   Offset                 Type VT     Attr            Value Name
// 7f8d50017380  4000248        8         System.Int32  1 instance               1c _stringLength
//
// SOS aligns the table by padding the Type column, but long generic type
// names overflow it and shift everything right, so a single fixed grammar is
// not enough. The strict pattern handles aligned rows; misaligned rows fall
// back to whitespace tokenization below.
var fieldRowPattern = regexp.MustCompile(
	`^\s*([0-9a-fA-F]+)\s+([0-9a-fA-F]+)\s+([0-9a-fA-F]+)\s+(.+?)\s+([01])\s+(static|instance)\s+([0-9a-fA-F]+)\s+(\S.*)$`)

type fieldRow struct {
	mt     string
	field  string
	offset string
	typ    string
	vt     string
	attr   string
	value  string
	name   string
}

// ParseObjectDump parses cleaned dumpobj output. typeNames maps method-table
// addresses (as printed in the MT column) to resolved type names; rows whose
// address is absent keep the raw Type column text. Rows that match neither
// grammar tier are skipped.
func ParseObjectDump(lines []string, typeNames map[string]string) *ObjectReport {
	header, fieldLines := splitFieldTable(lines)
	report := &ObjectReport{Header: header}

	for _, line := range fieldLines {
		row, ok := parseFieldRow(line)
		if !ok {
			continue
		}

		typ := row.typ
		if resolved, ok := typeNames[row.mt]; ok && resolved != "" {
			typ = resolved
		}

		field := ObjectField{
			MethodTable: row.mt,
			Name:        row.name,
			Type:        typ,
			Offset:      row.offset,
			Value:       row.value,
			IsStatic:    row.attr == "static",
			IsReference: isReferenceValue(row.vt, row.value),
			IsPrimitive: IsPrimitiveType(typ),
		}
		if field.IsPrimitive {
			field.Decoded = DecodePrimitive(typ, row.value)
		}

		report.Fields = append(report.Fields, field)
	}

	return report
}

// MethodTables returns the distinct MT column addresses of a dumpobj field
// table in order of first appearance. Callers resolve each address once and
// feed the results back into ParseObjectDump.
func MethodTables(lines []string) []string {
	_, fieldLines := splitFieldTable(lines)

	seen := make(map[string]struct{})
	var addrs []string
	for _, line := range fieldLines {
		row, ok := parseFieldRow(line)
		if !ok {
			continue
		}
		if _, dup := seen[row.mt]; dup {
			continue
		}
		seen[row.mt] = struct{}{}
		addrs = append(addrs, row.mt)
	}
	return addrs
}

// splitFieldTable separates the free-text header from the field table and
// drops the table's own column-header line.
func splitFieldTable(lines []string) (header, fields []string) {
	marker := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == fieldsMarker {
			marker = i
			break
		}
	}
	if marker < 0 {
		return lines, nil
	}

	header = lines[:marker]
	for _, line := range lines[marker+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isColumnHeader(line) {
			continue
		}
		fields = append(fields, line)
	}
	return header, fields
}

func isColumnHeader(line string) bool {
	for _, label := range []string{"MT", "Field", "Offset", "Type"} {
		if !strings.Contains(line, label) {
			return false
		}
	}
	return true
}

func parseFieldRow(line string) (fieldRow, bool) {
	if m := fieldRowPattern.FindStringSubmatch(line); m != nil {
		return fieldRow{
			mt:     m[1],
			field:  m[2],
			offset: m[3],
			typ:    strings.TrimSpace(m[4]),
			vt:     m[5],
			attr:   m[6],
			value:  m[7],
			name:   strings.TrimSpace(m[8]),
		}, true
	}
	return parseFieldRowLoose(line)
}

// parseFieldRowLoose recovers rows whose column alignment broke: the first
// three tokens are still mt/field/offset and the last four are still
// vt/attr/value/name, so whatever sits between them is the type text.
func parseFieldRowLoose(line string) (fieldRow, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 7 {
		return fieldRow{}, false
	}

	n := len(tokens)
	typ := UnknownType
	if middle := tokens[3 : n-4]; len(middle) > 0 {
		typ = strings.Join(middle, " ")
	}

	return fieldRow{
		mt:     tokens[0],
		field:  tokens[1],
		offset: tokens[2],
		typ:    typ,
		vt:     tokens[n-4],
		attr:   tokens[n-3],
		value:  tokens[n-2],
		name:   tokens[n-1],
	}, true
}

var hexValuePattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// A field is a heap reference only when the VT flag marks it as a pointer
// slot, the value parses as hex, and it is not a null reference.
func isReferenceValue(vt, value string) bool {
	if vt != "0" {
		return false
	}
	if !hexValuePattern.MatchString(value) {
		return false
	}
	return strings.Trim(value, "0") != ""
}
