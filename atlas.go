package panels

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureRegion describes a sub-rectangle within an atlas page.
type TextureRegion struct {
	Page      uint16 // atlas page index
	X, Y      uint16 // top-left corner within the page
	Width     uint16 // packed width (may differ from OriginalW if trimmed)
	Height    uint16 // packed height
	OriginalW uint16 // untrimmed width as authored
	OriginalH uint16 // untrimmed height as authored
	OffsetX   int16  // trim offset from TexturePacker
	OffsetY   int16
	Rotated   bool // stored 90 degrees clockwise in the page
}

// Atlas holds one or more page images and a map of named regions.
type Atlas struct {
	Pages   []*ebiten.Image
	regions map[string]TextureRegion
}

// Region returns the named region. Names are tried verbatim and with a
// ".png" suffix, since TexturePacker keeps source file names.
func (a *Atlas) Region(name string) (TextureRegion, bool) {
	if r, ok := a.regions[name]; ok {
		return r, true
	}
	r, ok := a.regions[name+".png"]
	return r, ok
}

// Len returns the number of regions.
func (a *Atlas) Len() int {
	return len(a.regions)
}

// LoadAtlas parses TexturePacker JSON data and associates the given page
// images. Both the hash format (single "frames" object) and the array format
// ("textures" array with per-page frame lists) are accepted.
func LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	var doc struct {
		Frames   map[string]atlasFrame `json:"frames"`
		Textures []struct {
			Image  string                `json:"image"`
			Frames map[string]atlasFrame `json:"frames"`
		} `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("panels: parse atlas JSON: %w", err)
	}

	atlas := &Atlas{Pages: pages, regions: make(map[string]TextureRegion)}
	switch {
	case doc.Textures != nil:
		for page, tex := range doc.Textures {
			for name, f := range tex.Frames {
				atlas.regions[name] = f.region(uint16(page))
			}
		}
	case doc.Frames != nil:
		for name, f := range doc.Frames {
			atlas.regions[name] = f.region(0)
		}
	default:
		return nil, fmt.Errorf("panels: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

type atlasRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type atlasFrame struct {
	Frame            atlasRect `json:"frame"`
	Rotated          bool      `json:"rotated"`
	SpriteSourceSize atlasRect `json:"spriteSourceSize"`
	SourceSize       struct {
		W int `json:"w"`
		H int `json:"h"`
	} `json:"sourceSize"`
}

func (f atlasFrame) region(page uint16) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}

// AtlasLoader builds panel visuals from atlas regions. Addresses may carry a
// Prefix (for example "ui/") that is stripped before the region lookup.
type AtlasLoader struct {
	Atlas  *Atlas
	Prefix string
}

// Load implements Loader. Atlas lookups never block, so ctx is only checked
// for cancellation.
func (l *AtlasLoader) Load(ctx context.Context, address string) (*Visual, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrLoadFailed, address, err)
	}
	name := strings.TrimPrefix(address, l.Prefix)
	r, ok := l.Atlas.Region(name)
	if !ok {
		return nil, fmt.Errorf("%w: atlas region %q", ErrAssetNotFound, name)
	}
	node := NewSprite(address, r)
	node.X, node.Y = float64(r.OffsetX), float64(r.OffsetY)
	if int(r.Page) < len(l.Atlas.Pages) && l.Atlas.Pages[r.Page] != nil && !r.Rotated {
		rect := image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
		node.Image = l.Atlas.Pages[r.Page].SubImage(rect).(*ebiten.Image)
	}
	return NewVisual(address, node), nil
}
