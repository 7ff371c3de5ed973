package gpx

import (
	"encoding/xml"
	"time"
)

// RawXML holds the inner markup of an <extensions> element as read. gpause
// never interprets it; heart rate, cadence and vendor blocks are written
// back untouched.
type RawXML []byte

type innerXML struct {
	Content string `xml:",innerxml"`
}

func (r RawXML) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if len(r) == 0 {
		return nil
	}
	return e.EncodeElement(innerXML{Content: string(r)}, start)
}

func (r *RawXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var in innerXML
	if err := d.DecodeElement(&in, &start); err != nil {
		return err
	}
	if in.Content == "" {
		*r = nil
		return nil
	}
	*r = append((*r)[:0], in.Content...)
	return nil
}

// Point is one <trkpt>. A zero Time means the fix carried no timestamp.
type Point struct {
	Lat        float64   `xml:"lat,attr"`
	Lon        float64   `xml:"lon,attr"`
	Elevation  float64   `xml:"ele,omitempty"`
	Time       time.Time `xml:"time,omitempty"`
	Extensions RawXML    `xml:"extensions,omitempty"`

	// Position in the document, filled in by ParseReader and FlattenPoints.
	TrackIdx, SegIdx, PtIdx int `xml:"-"`
}

type Track struct {
	Name        string         `xml:"name,omitempty"`
	Description string         `xml:"desc,omitempty"`
	Segments    []TrackSegment `xml:"trkseg"`
	Extensions  RawXML         `xml:"extensions,omitempty"`
}

type TrackSegment struct {
	Points     []Point `xml:"trkpt"`
	Extensions RawXML  `xml:"extensions,omitempty"`
}

// GPX is a whole document. Namespace attributes are kept so that vendor
// extensions stay resolvable after a rewrite.
type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`

	XMLNS       string `xml:"xmlns,attr,omitempty"`
	XMLNSXSI    string `xml:"xmlns:xsi,attr,omitempty"`
	XSI         string `xml:"xsi:schemaLocation,attr,omitempty"`
	XMLNSGPXTPX string `xml:"xmlns:gpxtpx,attr,omitempty"`
	XMLNSGPXX   string `xml:"xmlns:gpxx,attr,omitempty"`

	Metadata   Metadata   `xml:"metadata,omitempty"`
	Waypoints  []Waypoint `xml:"wpt"`
	Tracks     []Track    `xml:"trk"`
	Extensions RawXML     `xml:"extensions,omitempty"`
}

// Waypoint is a named point of interest. gpause writes one per detected pause.
type Waypoint struct {
	Lat         float64   `xml:"lat,attr"`
	Lon         float64   `xml:"lon,attr"`
	Time        time.Time `xml:"time,omitempty"`
	Name        string    `xml:"name,omitempty"`
	Description string    `xml:"desc,omitempty"`
	Type        string    `xml:"type,omitempty"`
}

type Metadata struct {
	Name        string    `xml:"name,omitempty"`
	Description string    `xml:"desc,omitempty"`
	Author      string    `xml:"author,omitempty"`
	Time        time.Time `xml:"time,omitempty"`
	Extensions  RawXML    `xml:"extensions,omitempty"`
}
