package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClassedElementEmptyTag(t *testing.T) {
	assert.Nil(t, CreateClassedElement("", "a", "b", "red", nil))
}

func TestCreateClassedElementBare(t *testing.T) {
	el := CreateClassedElement("DIV", "", "", "", nil)
	require.NotNil(t, el)

	out, err := el.Render()
	require.NoError(t, err)
	assert.Equal(t, "<div></div>", out)
	assert.Empty(t, el.Node.Attr)
	assert.False(t, el.Click())
}

func TestCreateClassedElementFull(t *testing.T) {
	clicks := 0
	el := CreateClassedElement("span", "badge big", "<b>7</b> new", "#ff0000", func() { clicks++ })
	require.NotNil(t, el)

	class, ok := el.Attr("class")
	require.True(t, ok)
	assert.Equal(t, "badge big", class)

	style, ok := el.Attr("style")
	require.True(t, ok)
	assert.Equal(t, "color: #ff0000;", style)

	inner, err := el.InnerHTML()
	require.NoError(t, err)
	assert.Equal(t, "<b>7</b> new", inner)

	out, err := el.Render()
	require.NoError(t, err)
	assert.Equal(t, `<span class="badge big" style="color: #ff0000;"><b>7</b> new</span>`, out)

	assert.True(t, el.Click())
	assert.True(t, el.Click())
	assert.Equal(t, 2, clicks)
}

func TestSetInnerHTMLReplacesChildren(t *testing.T) {
	el := CreateClassedElement("p", "", "first", "", nil)
	el.SetInnerHTML("<i>second</i>")

	inner, err := el.InnerHTML()
	require.NoError(t, err)
	assert.Equal(t, "<i>second</i>", inner)
}

func TestSetAttrReplaces(t *testing.T) {
	el := CreateClassedElement("a", "one", "", "", nil)
	el.SetAttr("class", "two")

	assert.Len(t, el.Node.Attr, 1)
	v, _ := el.Attr("class")
	assert.Equal(t, "two", v)
}

func TestContentEscapesText(t *testing.T) {
	el := CreateClassedElement("div", "", "a &amp; b", "", nil)
	inner, err := el.InnerHTML()
	require.NoError(t, err)
	assert.Equal(t, "a &amp; b", inner)
}
