package lua

import (
	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-webhelpers/internal/render"
)

// absent reports whether argument n was omitted, nil or false.
func absent(c *rt.GoCont, n int) bool {
	return n >= c.NArgs() || !rt.Truth(c.Arg(n))
}

func optInt(c *rt.GoCont, n, def int) (int, error) {
	if absent(c, n) {
		return def, nil
	}
	v, err := c.IntArg(n)
	return int(v), err
}

func optFloat(c *rt.GoCont, n int, def float64) (float64, error) {
	if absent(c, n) {
		return def, nil
	}
	return c.FloatArg(n)
}

func optString(c *rt.GoCont, n int, def string) (string, error) {
	if absent(c, n) {
		return def, nil
	}
	return c.StringArg(n)
}

// arrayValues returns t[1] through t[#t].
func arrayValues(t *rt.Table) []rt.Value {
	n := t.Len()
	vals := make([]rt.Value, 0, n)
	for i := int64(1); i <= n; i++ {
		vals = append(vals, t.Get(rt.IntValue(i)))
	}
	return vals
}

// setArray stores vals at t[1..] and clears the slots up to oldLen.
func setArray(t *rt.Table, vals []rt.Value, oldLen int) {
	for i, v := range vals {
		t.Set(rt.IntValue(int64(i+1)), v)
	}
	for i := len(vals); i < oldLen; i++ {
		t.Set(rt.IntValue(int64(i+1)), rt.NilValue)
	}
}

func newArray(vals []rt.Value) *rt.Table {
	t := rt.NewTable()
	setArray(t, vals, 0)
	return t
}

// scalar converts strings, numbers and booleans to Go values; anything else
// becomes nil.
func scalar(v rt.Value) any {
	switch x := v.Interface().(type) {
	case string, int64, float64, bool:
		return x
	}
	return nil
}

// fields copies the named scalar entries of t into a map.
func fields(t *rt.Table, names []string) map[string]any {
	m := make(map[string]any, len(names))
	for _, name := range names {
		if x := scalar(t.Get(rt.StringValue(name))); x != nil {
			m[name] = x
		}
	}
	return m
}

// instructionsFromTable rebuilds merge instructions from a Lua array. Only
// the declared fields of each entry are read; non-table entries are skipped.
func instructionsFromTable(t *rt.Table) []render.MergeInstruction {
	var out []render.MergeInstruction
	for _, v := range arrayValues(t) {
		entry, ok := v.TryTable()
		if !ok {
			continue
		}

		m := fields(entry, render.InstructionShape.Names())
		if colors, ok := entry.Get(rt.StringValue("colors")).TryTable(); ok {
			list := make([]any, 0, colors.Len())
			for _, cv := range arrayValues(colors) {
				if ct, ok := cv.TryTable(); ok {
					list = append(list, fields(ct, render.ReplacementShape.Names()))
				}
			}
			m["colors"] = list
		}
		out = append(out, render.InstructionShape.Rebuild(m))
	}
	return out
}
