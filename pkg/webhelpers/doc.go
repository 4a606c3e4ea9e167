// Package webhelpers is the public API of go-webhelpers: small value helpers
// (random numbers, strings, colors, number formatting, element building)
// and an SVG pipeline that recolors, rasterizes and stacks SVG layers into
// a single image data URL.
//
// # Value helpers
//
// The helpers are plain functions:
//
//	webhelpers.ColorForPercentage(0.5, nil)          // "#ffff00"
//	webhelpers.AbbreviateNumber(1500, 1, webhelpers.NoPlaces, "") // "1.5K"
//	webhelpers.NumberWithCommas(1234567)             // "1,234,567"
//
// # Merging SVG layers
//
// A [Client] owns the HTTP client, logger and metrics used by the pipeline:
//
//	c, err := webhelpers.New(webhelpers.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	url, err := c.Merge(ctx, []webhelpers.MergeInstruction{
//		{Source: "https://example.com/base.svg",
//			Colors: []webhelpers.ColorReplacement{{From: "#ff0000", To: "#00aa00"}}},
//		{Source: "https://example.com/overlay.svg"},
//	})
//
// Layers are fetched and decoded strictly in order and drawn bottom first.
// An empty instruction list yields "" without touching the network. Any
// failure aborts the merge; use [Categorize] to tell fetch, decode and
// encode failures apart.
//
// # Jobs and scripts
//
// [Client.RunJobFile] runs a YAML job file, [Client.WatchJob] re-runs it on
// every change, and [Client.RunScript] executes a Lua script with the
// helpers exposed as the global "helpers" table.
package webhelpers
