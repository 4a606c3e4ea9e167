// Package lua embeds a Golua runtime that exposes the go-webhelpers
// functions to scripts through a global "helpers" table.
// This file implements the helpers table.
package lua

import (
	"context"
	"fmt"
	"time"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-webhelpers/internal/collection"
	"github.com/opd-ai/go-webhelpers/internal/dom"
	"github.com/opd-ai/go-webhelpers/internal/format"
	"github.com/opd-ai/go-webhelpers/internal/random"
	"github.com/opd-ai/go-webhelpers/internal/render"
	"github.com/opd-ai/go-webhelpers/internal/textutil"
)

// ModuleName is the global table the helpers are registered under.
const ModuleName = "helpers"

// MergeFunc composites merge instructions into a data URL. Its signature
// matches render.Merger.Merge.
type MergeFunc func(ctx context.Context, instructions []render.MergeInstruction, mime string, quality float64) (string, error)

// HelpersAPI binds the helper functions to a HelperRuntime.
type HelpersAPI struct {
	runtime *HelperRuntime
	gen     *random.Generator
	merge   MergeFunc
	ctx     context.Context
	now     func() time.Time
}

// APIOption configures a HelpersAPI.
type APIOption func(*HelpersAPI)

// WithGenerator sets the random source. The default is random.Default().
func WithGenerator(g *random.Generator) APIOption {
	return func(api *HelpersAPI) {
		if g != nil {
			api.gen = g
		}
	}
}

// WithMergeFunc routes merge_svgs through fn. The default is a
// render.Merger with default settings.
func WithMergeFunc(fn MergeFunc) APIOption {
	return func(api *HelpersAPI) {
		if fn != nil {
			api.merge = fn
		}
	}
}

// WithContext sets the context merge_svgs runs under. Canceling it aborts
// merges in flight. The default is context.Background().
func WithContext(ctx context.Context) APIOption {
	return func(api *HelpersAPI) {
		if ctx != nil {
			api.ctx = ctx
		}
	}
}

// WithClock sets the time source behind time_ago.
func WithClock(now func() time.Time) APIOption {
	return func(api *HelpersAPI) {
		if now != nil {
			api.now = now
		}
	}
}

// NewHelpersAPI registers the helpers table in runtime.
func NewHelpersAPI(runtime *HelperRuntime, opts ...APIOption) (*HelpersAPI, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}

	api := &HelpersAPI{
		runtime: runtime,
		gen:     random.Default(),
		merge:   render.NewMerger().Merge,
		ctx:     context.Background(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(api)
	}

	runtime.SetModule(ModuleName, api.functions())
	return api, nil
}

func (api *HelpersAPI) functions() []Function {
	return []Function{
		{Name: "random_int", Fn: api.randomInt, NArgs: 2},
		{Name: "replace_all", Fn: replaceAll, NArgs: 3},
		{Name: "guid", Fn: api.guid},
		{Name: "random_element", Fn: api.randomElement, NArgs: 1},
		{Name: "filename_from_path", Fn: filenameFromPath, NArgs: 1},
		{Name: "color_for_percentage", Fn: colorForPercentage, NArgs: 1},
		{Name: "rgb_to_hex", Fn: rgbToHex, NArgs: 3},
		{Name: "hex_to_rgb", Fn: hexToRGB, NArgs: 1},
		{Name: "random_hex_color", Fn: api.randomHexColor, NArgs: 2},
		{Name: "abbreviate_number", Fn: abbreviateNumber, NArgs: 4},
		{Name: "annotate_number", Fn: annotateNumber, NArgs: 4},
		{Name: "number_with_commas", Fn: numberWithCommas, NArgs: 1},
		{Name: "time_ago", Fn: api.timeAgo, NArgs: 1},
		{Name: "dist", Fn: dist, NArgs: 4},
		{Name: "chunk_string", Fn: chunkString, NArgs: 2},
		{Name: "hash", Fn: hash, NArgs: 1},
		{Name: "remove_from_array", Fn: removeFromArray, NArgs: 2},
		{Name: "shuffle", Fn: api.shuffle, NArgs: 1},
		{Name: "create_element", Fn: createElement, NArgs: 4},
		{Name: "merge_svgs", Fn: api.mergeSVGs, NArgs: 3},
		{Name: "data_url_type", Fn: dataURLType, NArgs: 1},
	}
}

func (api *HelpersAPI) randomInt(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	lo, err := c.IntArg(0)
	if err != nil {
		return nil, fmt.Errorf("random_int: %w", err)
	}
	hi, err := c.IntArg(1)
	if err != nil {
		return nil, fmt.Errorf("random_int: %w", err)
	}
	n := api.gen.IntFromInterval(int(lo), int(hi))
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(n))), nil
}

func replaceAll(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	s, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("replace_all: %w", err)
	}
	find, err := c.StringArg(1)
	if err != nil {
		return nil, fmt.Errorf("replace_all: %w", err)
	}
	repl, err := c.StringArg(2)
	if err != nil {
		return nil, fmt.Errorf("replace_all: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(textutil.ReplaceAll(s, find, repl))), nil
}

func (api *HelpersAPI) guid(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext1(t.Runtime, rt.StringValue(api.gen.GUID())), nil
}

func (api *HelpersAPI) randomElement(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	table, err := c.TableArg(0)
	if err != nil {
		return nil, fmt.Errorf("random_element: %w", err)
	}
	v, ok := random.Element(api.gen, arrayValues(table))
	if !ok {
		return c.PushingNext1(t.Runtime, rt.NilValue), nil
	}
	return c.PushingNext1(t.Runtime, v), nil
}

func filenameFromPath(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	path, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("filename_from_path: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(textutil.FilenameFromPath(path))), nil
}

func colorForPercentage(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	pct, err := c.FloatArg(0)
	if err != nil {
		return nil, fmt.Errorf("color_for_percentage: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(render.ColorForPercentage(pct, nil))), nil
}

func rgbToHex(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	var ch [3]uint8
	for i := range ch {
		v, err := c.IntArg(i)
		if err != nil {
			return nil, fmt.Errorf("rgb_to_hex: %w", err)
		}
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("rgb_to_hex: channel %d out of range: %d", i+1, v)
		}
		ch[i] = uint8(v)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(render.RGBToHex(ch[0], ch[1], ch[2]))), nil
}

func hexToRGB(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	hex, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("hex_to_rgb: %w", err)
	}
	clr, ok := render.HexToRGB(hex)
	if !ok {
		return c.PushingNext1(t.Runtime, rt.NilValue), nil
	}

	table := rt.NewTable()
	table.Set(rt.StringValue("r"), rt.IntValue(int64(clr.R)))
	table.Set(rt.StringValue("g"), rt.IntValue(int64(clr.G)))
	table.Set(rt.StringValue("b"), rt.IntValue(int64(clr.B)))
	table.Set(rt.StringValue("a"), rt.IntValue(int64(clr.A)))
	return c.PushingNext1(t.Runtime, rt.TableValue(table)), nil
}

func (api *HelpersAPI) randomHexColor(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	maxL, err := optInt(c, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("random_hex_color: %w", err)
	}
	minL, err := optInt(c, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("random_hex_color: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(render.RandomHexColor(api.gen, maxL, minL))), nil
}

// numberArgs reads the (n, max_places, force_places, text) arguments shared
// by abbreviate_number and annotate_number. nil or false places mean
// format.NoPlaces.
func numberArgs(c *rt.GoCont) (n float64, maxPlaces, forcePlaces int, text string, err error) {
	if n, err = c.FloatArg(0); err != nil {
		return
	}
	if maxPlaces, err = optInt(c, 1, format.NoPlaces); err != nil {
		return
	}
	if forcePlaces, err = optInt(c, 2, format.NoPlaces); err != nil {
		return
	}
	text, err = optString(c, 3, "")
	return
}

func abbreviateNumber(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	n, maxPlaces, forcePlaces, letter, err := numberArgs(c)
	if err != nil {
		return nil, fmt.Errorf("abbreviate_number: %w", err)
	}
	s := format.AbbreviateNumber(n, maxPlaces, forcePlaces, letter)
	return c.PushingNext1(t.Runtime, rt.StringValue(s)), nil
}

func annotateNumber(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	n, maxPlaces, forcePlaces, abbr, err := numberArgs(c)
	if err != nil {
		return nil, fmt.Errorf("annotate_number: %w", err)
	}
	s := format.AnnotateNumber(n, maxPlaces, forcePlaces, abbr)
	return c.PushingNext1(t.Runtime, rt.StringValue(s)), nil
}

func numberWithCommas(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	n, err := c.FloatArg(0)
	if err != nil {
		return nil, fmt.Errorf("number_with_commas: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(format.NumberWithCommas(n))), nil
}

// timeAgo takes a Unix timestamp in seconds.
func (api *HelpersAPI) timeAgo(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	secs, err := c.FloatArg(0)
	if err != nil {
		return nil, fmt.Errorf("time_ago: %w", err)
	}
	then := time.UnixMilli(int64(secs * 1000))
	return c.PushingNext1(t.Runtime, rt.StringValue(format.TimeAgo(then, api.now()))), nil
}

func dist(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	var p [4]float64
	for i := range p {
		v, err := c.FloatArg(i)
		if err != nil {
			return nil, fmt.Errorf("dist: %w", err)
		}
		p[i] = v
	}
	d := render.DistBetweenPoints(p[0], p[1], p[2], p[3])
	return c.PushingNext1(t.Runtime, rt.FloatValue(d)), nil
}

func chunkString(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	s, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("chunk_string: %w", err)
	}
	n, err := c.IntArg(1)
	if err != nil {
		return nil, fmt.Errorf("chunk_string: %w", err)
	}

	chunks := textutil.ChunkString(s, int(n))
	if chunks == nil {
		return c.PushingNext1(t.Runtime, rt.NilValue), nil
	}
	vals := make([]rt.Value, len(chunks))
	for i, chunk := range chunks {
		vals[i] = rt.StringValue(chunk)
	}
	return c.PushingNext1(t.Runtime, rt.TableValue(newArray(vals))), nil
}

func hash(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	s, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(textutil.Hash(s)))), nil
}

// removeFromArray removes the first element equal to the value, in place,
// and returns the same table.
func removeFromArray(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	table, err := c.TableArg(0)
	if err != nil {
		return nil, fmt.Errorf("remove_from_array: %w", err)
	}
	if c.NArgs() < 2 || c.Arg(1).IsNil() {
		return nil, fmt.Errorf("remove_from_array: value to remove is missing")
	}

	vals := arrayValues(table)
	oldLen := len(vals)
	setArray(table, collection.Remove(vals, c.Arg(1)), oldLen)
	return c.PushingNext1(t.Runtime, rt.TableValue(table)), nil
}

// shuffle shuffles the array part of the table in place and returns it.
func (api *HelpersAPI) shuffle(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	table, err := c.TableArg(0)
	if err != nil {
		return nil, fmt.Errorf("shuffle: %w", err)
	}
	vals := arrayValues(table)
	setArray(table, random.Shuffle(api.gen, vals), len(vals))
	return c.PushingNext1(t.Runtime, rt.TableValue(table)), nil
}

// createElement returns the rendered markup of the element, or nil for an
// empty tag.
func createElement(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	var args [4]string
	for i := range args {
		s, err := optString(c, i, "")
		if err != nil {
			return nil, fmt.Errorf("create_element: %w", err)
		}
		args[i] = s
	}

	el := dom.CreateClassedElement(args[0], args[1], args[2], args[3], nil)
	if el == nil {
		return c.PushingNext1(t.Runtime, rt.NilValue), nil
	}
	markup, err := el.Render()
	if err != nil {
		return nil, fmt.Errorf("create_element: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(markup)), nil
}

// defaultMergeQuality is the quality merge_svgs uses when none is given.
const defaultMergeQuality = 1.0

// mergeSVGs takes an array of {src=..., colors={{from=..., to=...}}} tables,
// an optional MIME type and quality, and returns the data URL. An empty
// array returns nil. Failures return nil and the error message.
func (api *HelpersAPI) mergeSVGs(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	table, err := c.TableArg(0)
	if err != nil {
		return nil, fmt.Errorf("merge_svgs: %w", err)
	}
	mime, err := optString(c, 1, render.MIMEPNG)
	if err != nil {
		return nil, fmt.Errorf("merge_svgs: %w", err)
	}
	quality, err := optFloat(c, 2, defaultMergeQuality)
	if err != nil {
		return nil, fmt.Errorf("merge_svgs: %w", err)
	}

	url, err := api.merge(api.ctx, instructionsFromTable(table), mime, quality)
	if err != nil {
		return c.PushingNext(t.Runtime, rt.NilValue, rt.StringValue(err.Error())), nil
	}
	if url == "" {
		return c.PushingNext1(t.Runtime, rt.NilValue), nil
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(url)), nil
}

func dataURLType(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	url, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("data_url_type: %w", err)
	}
	blob, err := render.DataURLToBlob(url)
	if err != nil {
		return c.PushingNext(t.Runtime, rt.NilValue, rt.StringValue(err.Error())), nil
	}
	return c.PushingNext(t.Runtime, rt.StringValue(blob.Type), rt.IntValue(int64(len(blob.Data)))), nil
}
