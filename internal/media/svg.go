package media

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
)

func isSVG(p string) bool {
	return strings.EqualFold(path.Ext(p), ".svg")
}

// GetSVGDimensions reads the width and height of an SVG document from its
// root element, falling back to the viewBox when either is missing or is
// a percentage.
func GetSVGDimensions(r io.Reader) (*ImageDimensions, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("no svg element")
			}
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return nil, fmt.Errorf("root element is %q, not svg", start.Name.Local)
		}
		return svgSize(start.Attr)
	}
}

func svgSize(attrs []xml.Attr) (*ImageDimensions, error) {
	var width, height, viewBox string
	for _, a := range attrs {
		switch a.Name.Local {
		case "width":
			width = a.Value
		case "height":
			height = a.Value
		case "viewBox":
			viewBox = a.Value
		}
	}

	w, wok := parseLength(width)
	h, hok := parseLength(height)
	if wok && hok {
		return &ImageDimensions{Width: w, Height: h}, nil
	}

	fields := strings.FieldsFunc(viewBox, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 4 {
		vw, err1 := strconv.ParseFloat(fields[2], 64)
		vh, err2 := strconv.ParseFloat(fields[3], 64)
		if err1 == nil && err2 == nil && vw > 0 && vh > 0 {
			return &ImageDimensions{Width: int(math.Round(vw)), Height: int(math.Round(vh))}, nil
		}
	}
	return nil, errors.New("svg has no usable size")
}

// parseLength accepts plain numbers and px values.
func parseLength(s string) (int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int(math.Round(v)), true
}
