package canvas

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// ExportGzip writes the gzip compressed export of e to w. Compressed SVG
// documents are conventionally stored with the .svgz extension.
// Level is one of the [gzip] compression levels.
func ExportGzip(e Exporter, w io.Writer, level int) error {
	zw, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return err
	}
	err = e.Export(zw)
	if err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
