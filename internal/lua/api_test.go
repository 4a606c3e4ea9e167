package lua

import (
	"context"
	"image/color"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	rt "github.com/arnodel/golua/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-webhelpers/internal/random"
	"github.com/opd-ai/go-webhelpers/internal/render"
)

const redSquare = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10" viewBox="0 0 10 10">
<rect x="0" y="0" width="10" height="10" style="fill:#ff0000;"/>
</svg>`

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestAPI(t *testing.T) *HelperRuntime {
	t.Helper()
	runtime := newTestRuntime(t)
	_, err := NewHelpersAPI(runtime,
		WithGenerator(random.New(7, 11)),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return runtime
}

func run(t *testing.T, runtime *HelperRuntime, code string) rt.Value {
	t.Helper()
	v, err := runtime.ExecuteString("test", code)
	require.NoError(t, err, code)
	return v
}

func TestNewHelpersAPINilRuntime(t *testing.T) {
	_, err := NewHelpersAPI(nil)
	assert.ErrorIs(t, err, ErrNilRuntime)
}

func TestHelpersScalarFunctions(t *testing.T) {
	runtime := newTestAPI(t)
	threeHoursAgo := strconv.FormatInt(fixedNow.Add(-3*time.Hour).Unix(), 10)

	tests := []struct {
		code string
		want interface{}
	}{
		{`return helpers.replace_all("a-b-c", "-", "+")`, "a+b+c"},
		{`return helpers.filename_from_path("/a/b/c.txt")`, "c.txt"},
		{`return helpers.color_for_percentage(0)`, "#ff0000"},
		{`return helpers.color_for_percentage(0.5)`, "#ffff00"},
		{`return helpers.color_for_percentage(1)`, "#00ff00"},
		{`return helpers.rgb_to_hex(26, 43, 60)`, "#1a2b3c"},
		{`return helpers.abbreviate_number(1500, 1)`, "1.5K"},
		{`return helpers.abbreviate_number(999)`, "999"},
		{`return helpers.number_with_commas(1234567)`, "1,234,567"},
		{`return helpers.number_with_commas(0)`, "0"},
		{`return helpers.time_ago(` + threeHoursAgo + `)`, "3 hours ago"},
		{`return helpers.dist(0, 0, 3, 4)`, 5.0},
		{`return helpers.hash("hello")`, int64(99162322)},
		{`return helpers.hash("")`, int64(0)},
		{`return helpers.create_element("", "x", "y", "")`, nil},
		{`return helpers.create_element("span", "a b", "hi", "red")`,
			`<span class="a b" style="color: red;">hi</span>`},
		{`return helpers.chunk_string("abc", 0)`, nil},
		{`return helpers.hex_to_rgb("zzzzzz")`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, runtime, tt.code).Interface())
		})
	}
}

func TestHelpersHexToRGB(t *testing.T) {
	runtime := newTestAPI(t)
	v := run(t, runtime, `
		local c = helpers.hex_to_rgb("#80ff0000")
		return c.a .. "," .. c.r .. "," .. c.g .. "," .. c.b
	`)
	assert.Equal(t, "128,255,0,0", v.AsString())
}

func TestHelpersRandom(t *testing.T) {
	runtime := newTestAPI(t)

	v := run(t, runtime, `
		for i = 1, 200 do
			local n = helpers.random_int(3, 5)
			if n < 3 or n > 5 then return n end
		end
		return "ok"
	`)
	assert.Equal(t, "ok", v.Interface())

	guid := run(t, runtime, `return helpers.guid()`).AsString()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`), guid)

	hex := run(t, runtime, `return helpers.random_hex_color(120, 100)`).AsString()
	c, ok := render.HexToRGB(hex)
	require.True(t, ok, hex)
	for _, ch := range []uint8{c.R, c.G, c.B} {
		assert.True(t, ch >= 100 && ch <= 120, "channel %d out of band in %s", ch, hex)
	}

	el := run(t, runtime, `return helpers.random_element({"a", "b", "c"})`).AsString()
	assert.Contains(t, []string{"a", "b", "c"}, el)
	assert.True(t, run(t, runtime, `return helpers.random_element({})`).IsNil())
}

func TestHelpersArrays(t *testing.T) {
	runtime := newTestAPI(t)

	v := run(t, runtime, `
		local t = {"a", "b", "c", "b"}
		local same = helpers.remove_from_array(t, "b")
		return tostring(same == t) .. ":" .. table.concat(t, ",") .. ":" .. #t
	`)
	assert.Equal(t, "true:a,c,b:3", v.AsString())

	v = run(t, runtime, `
		local t = {1, 2, 3}
		helpers.remove_from_array(t, 9)
		return table.concat(t, ",")
	`)
	assert.Equal(t, "1,2,3", v.AsString())

	v = run(t, runtime, `
		local t = {1, 2, 3, 4, 5}
		helpers.shuffle(t)
		table.sort(t)
		return table.concat(t, ",") .. ":" .. #t
	`)
	assert.Equal(t, "1,2,3,4,5:5", v.AsString())

	v = run(t, runtime, `return table.concat(helpers.chunk_string("abcdefg", 3), "|")`)
	assert.Equal(t, "abc|def|g", v.AsString())
}

func TestHelpersArgumentErrors(t *testing.T) {
	runtime := newTestAPI(t)

	for _, code := range []string{
		`return helpers.rgb_to_hex(256, 0, 0)`,
		`return helpers.random_int("x", 1)`,
		`return helpers.shuffle("nope")`,
		`return helpers.remove_from_array({})`,
	} {
		_, err := runtime.ExecuteString("test", code)
		assert.Error(t, err, code)
	}
}

func TestHelpersMergeSVGs(t *testing.T) {
	runtime := newTestAPI(t)
	runtime.SetGlobal("red_square", rt.StringValue(redSquare))

	url := run(t, runtime, `
		return helpers.merge_svgs({
			{ src = red_square, colors = { { from = "#ff0000", to = "#0000ff" } } },
		}, "image/png", 1)
	`).AsString()
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)

	img, err := render.DecodeDataURL(url)
	require.NoError(t, err)
	got := color.RGBAModel.Convert(img.At(5, 5)).(color.RGBA)
	assert.True(t, got.B > 250 && got.R < 5, "pixel = %v, want blue", got)

	mime := run(t, runtime, `
		local url = helpers.merge_svgs({ { src = red_square } }, "image/jpeg", 0.5)
		return helpers.data_url_type(url)
	`)
	assert.Equal(t, "image/jpeg", mime.AsString())

	assert.True(t, run(t, runtime, `return helpers.merge_svgs({})`).IsNil())
}

func TestHelpersMergeSVGsRouting(t *testing.T) {
	runtime := newTestRuntime(t)
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "script")

	var gotCtx context.Context
	var gotQuality float64
	var gotIns []render.MergeInstruction
	_, err := NewHelpersAPI(runtime,
		WithContext(ctx),
		WithMergeFunc(func(ctx context.Context, ins []render.MergeInstruction, mime string, quality float64) (string, error) {
			gotCtx, gotQuality, gotIns = ctx, quality, ins
			return "data:image/png;base64,AA==", nil
		}),
	)
	require.NoError(t, err)

	v := run(t, runtime, `return helpers.merge_svgs({ { src = "https://example.com/a.svg" } })`)
	assert.Equal(t, "data:image/png;base64,AA==", v.AsString())
	require.NotNil(t, gotCtx)
	assert.Equal(t, "script", gotCtx.Value(ctxKey{}))
	assert.Equal(t, 1.0, gotQuality)
	require.Len(t, gotIns, 1)
	assert.Equal(t, "https://example.com/a.svg", gotIns[0].Source)
}

func TestHelpersMergeSVGsCanceled(t *testing.T) {
	runtime := newTestRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHelpersAPI(runtime, WithContext(ctx))
	require.NoError(t, err)

	v := run(t, runtime, `
		local url, err = helpers.merge_svgs({ { src = "https://example.com/a.svg" } })
		if url ~= nil then return "unexpected url" end
		return err
	`)
	assert.Contains(t, v.AsString(), "context canceled")
}

func TestHelpersMergeSVGsFailure(t *testing.T) {
	runtime := newTestAPI(t)

	v := run(t, runtime, `
		local url, err = helpers.merge_svgs({ { src = "http://[::1]:namedport/x.svg" } })
		if url ~= nil then return "unexpected url" end
		return err
	`)
	assert.Contains(t, v.AsString(), "instruction 0")
}

func TestHelpersDataURLType(t *testing.T) {
	runtime := newTestAPI(t)

	v := run(t, runtime, `
		local mime, size = helpers.data_url_type("data:text/plain;base64,aGVsbG8=")
		return mime .. ":" .. size
	`)
	assert.Equal(t, "text/plain:5", v.AsString())

	v = run(t, runtime, `
		local mime, err = helpers.data_url_type("garbage")
		return err
	`)
	assert.Contains(t, v.AsString(), "invalid data URL")
}

func TestInstructionsFromTable(t *testing.T) {
	runtime := newTestRuntime(t)
	v := run(t, runtime, `
		return {
			{ src = "https://a/x.svg", colors = { { from = "#000000", to = "#ffffff" }, "skip" }, extra = 1 },
			"not a table",
			{ src = 42 },
		}
	`)
	table, ok := v.TryTable()
	require.True(t, ok)

	got := instructionsFromTable(table)
	want := []render.MergeInstruction{
		{
			Source: "https://a/x.svg",
			Colors: []render.ColorReplacement{{From: "#000000", To: "#ffffff"}},
		},
		{},
	}
	assert.Equal(t, want, got)
}
