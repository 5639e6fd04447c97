package capability

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/codescan/internal/model"
)

// zbarDocument is the XML document printed by "zbarimg --xml" and
// "zbarcam --xml":
//
//	<barcodes xmlns='http://zbar.sourceforge.net/2008/barcode'>
//	<source href='code.png'>
//	<index num='0'>
//	<symbol type='QR-Code' quality='1' orientation='UP'>
//	<polygon points='+10,10 +10,90 +90,90 +90,10'/>
//	<data><![CDATA[HELLO]]></data></symbol>
//	</index></source></barcodes>
type zbarDocument struct {
	XMLName xml.Name     `xml:"barcodes"`
	Sources []zbarSource `xml:"source"`
}

type zbarSource struct {
	Href    string      `xml:"href,attr"`
	Device  string      `xml:"device,attr"`
	Indexes []zbarIndex `xml:"index"`
}

type zbarIndex struct {
	Num     int          `xml:"num,attr"`
	Symbols []zbarSymbol `xml:"symbol"`
}

type zbarSymbol struct {
	Type        string       `xml:"type,attr"`
	Quality     string       `xml:"quality,attr"`
	Orientation string       `xml:"orientation,attr"`
	Polygon     *zbarPolygon `xml:"polygon"`
	Data        zbarData     `xml:"data"`
}

type zbarPolygon struct {
	Points string `xml:"points,attr"`
}

type zbarData struct {
	Format string `xml:"format,attr"`
	Value  string `xml:",chardata"`
}

// parseZbarXML converts zbar XML output into decoded records, in the order
// zbar reported them. Empty output means nothing was decoded.
func parseZbarXML(out []byte) ([]model.Barcode, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return []model.Barcode{}, nil
	}

	var doc zbarDocument
	if err := xml.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedOutput, err)
	}

	barcodes := make([]model.Barcode, 0)
	for _, src := range doc.Sources {
		for _, idx := range src.Indexes {
			for _, sym := range idx.Symbols {
				b, err := sym.barcode()
				if err != nil {
					return nil, err
				}
				b.Metadata["zbar.index"] = strconv.Itoa(idx.Num)
				if src.Href != "" {
					b.Metadata["zbar.source"] = src.Href
				}
				if src.Device != "" {
					b.Metadata["zbar.source"] = src.Device
				}
				barcodes = append(barcodes, b)
			}
		}
	}
	return barcodes, nil
}

func (s zbarSymbol) barcode() (model.Barcode, error) {
	b := model.Barcode{
		Format:   model.ParseBarcodeFormat(s.Type),
		Metadata: map[string]string{"zbar.type": s.Type},
	}
	if s.Quality != "" {
		b.Metadata["zbar.quality"] = s.Quality
	}
	if s.Orientation != "" {
		b.Metadata["zbar.orientation"] = s.Orientation
	}
	if s.Polygon != nil {
		b.CornerPoints = parsePolygon(s.Polygon.Points)
	}

	if s.Data.Format == "base64" {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s.Data.Value))
		if err != nil {
			return model.Barcode{}, fmt.Errorf("%w: invalid base64 data: %w", ErrUnexpectedOutput, err)
		}
		b.Bytes = raw
		// Binary payloads have no text form
		if utf8.Valid(raw) {
			b.RawValue = model.StringPtr(string(raw))
		}
	} else {
		b.Bytes = []byte(s.Data.Value)
		b.RawValue = model.StringPtr(s.Data.Value)
	}

	if b.RawValue != nil {
		b.DisplayValue = *b.RawValue
		b.ValueType = ClassifyValue(*b.RawValue)
	}
	return b, nil
}

// parsePolygon parses "+x,y +x,y ..." into points. Malformed pairs are skipped.
func parsePolygon(points string) []model.Point {
	fields := strings.Fields(points)
	result := make([]model.Point, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(strings.TrimPrefix(f, "+"), ",")
		if !ok {
			continue
		}
		x, errX := strconv.Atoi(xs)
		y, errY := strconv.Atoi(ys)
		if errX != nil || errY != nil {
			continue
		}
		result = append(result, model.Point{X: x, Y: y})
	}
	return result
}
