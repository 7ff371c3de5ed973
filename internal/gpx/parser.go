package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

const (
	namespace11    = "http://www.topografix.com/GPX/1/1"
	version11      = "1.1"
	defaultCreator = "gpause"
)

// Parse opens path and decodes it with ParseReader.
func Parse(path string) (*GPX, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gpx: %w", err)
	}
	defer f.Close()

	return ParseReader(f)
}

// ParseReader decodes one GPX document. Missing root attributes get GPX 1.1
// defaults and every point is stamped with its track, segment and point
// index.
func ParseReader(r io.Reader) (*GPX, error) {
	doc := new(GPX)
	if err := xml.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gpx: %w", err)
	}

	if doc.XMLNS == "" {
		doc.XMLNS = namespace11
	}
	if doc.Version == "" {
		doc.Version = version11
	}
	if doc.Creator == "" {
		doc.Creator = defaultCreator
	}

	doc.eachPoint(func(p *Point, track, seg, pt int) {
		p.TrackIdx, p.SegIdx, p.PtIdx = track, seg, pt
	})
	return doc, nil
}

// Write stores the document at path, replacing any existing file.
func (g *GPX) Write(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gpx: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close gpx: %w", cerr)
		}
	}()

	return g.WriteToWriter(f)
}

// WriteToWriter encodes the document as indented XML with a declaration.
func (g *GPX) WriteToWriter(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode gpx: %w", err)
	}
	return enc.Close()
}
