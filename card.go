package clipdex

import (
	"bytes"
	"fmt"
	"html/template"
)

// Card is the display data of one result thumbnail.
type Card struct {
	Kind      string
	Location  string
	Thumbnail string
	ContentID string
	Caption   string
}

// ElementID is the id of the card's main anchor; "-similar" and "-movie"
// suffixes name the two action anchors.
func (c Card) ElementID() string {
	return c.Kind + "-" + c.ContentID
}

var cardTmpl = template.Must(template.New("card").Parse(
	`<div class="card wrapper" style="width: 10rem;" data-toggle="tooltip" data-placement="top" title="{{.Caption}}" data-location="{{.Location}}">
  <a id="{{.ElementID}}" class="btn btn-primary">
    <img class="card-img-top" src="{{.Thumbnail}}" alt="Card image cap"></a>
  <a id="{{.ElementID}}-similar" class="button btn-warning text-center btn-md"><h5>Find Similar</h5></a>
  <a id="{{.ElementID}}-movie" class="button btn-warning text-center btn-md"><h5>All Clips</h5></a>
</div>`))

// RenderCard renders c as a Bootstrap card fragment. Values are escaped for
// their HTML context.
func RenderCard(c Card) (template.HTML, error) {
	var buf bytes.Buffer
	if err := cardTmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("render card %s: %w", c.ElementID(), err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // output of html/template
}

// MustRenderCard is like RenderCard but panics on error.
func MustRenderCard(c Card) template.HTML {
	h, err := RenderCard(c)
	if err != nil {
		panic(err)
	}
	return h
}
