package qrdetect

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/multi"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/wxmine/qr-analyzer/pkg/logger"
)

// Detector decodes QR codes from rendered page images. It runs a single-code
// pass and a multi-code pass over the same image; both always run because each
// pass can surface codes the other misses.
type Detector struct {
	logger logger.Logger
	single gozxing.Reader
	multi  multi.MultipleBarcodeReader
	hints  map[gozxing.DecodeHintType]interface{}
}

// New creates a detector. Safe to reuse across pages within one analysis.
func New(log logger.Logger) *Detector {
	return &Detector{
		logger: log,
		single: qrcode.NewQRCodeReader(),
		multi:  multiqr.NewQRCodeMultiReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Detect returns the distinct non-empty payloads found on one page image, in
// first-discovery order. De-duplication is by exact string match. A failing
// pass contributes zero results and never aborts the page loop.
func (d *Detector) Detect(img image.Image) []string {
	// 灰度化后再解码，扫描件和彩色页面的成功率更高
	gray := imaging.Grayscale(img)

	bmp, err := gozxing.NewBinaryBitmapFromImage(gray)
	if err != nil {
		d.logger.Warn("QR bitmap conversion failed", logger.Error(err))
		return nil
	}

	seen := make(map[string]struct{})
	payloads := make([]string, 0, 1)
	add := func(text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		payloads = append(payloads, text)
	}

	if result, err := d.single.Decode(bmp, d.hints); err == nil {
		add(result.GetText())
	}

	// The multi pass runs even when the single pass succeeded: it can find
	// additional codes on the same page.
	if results, err := d.multi.DecodeMultiple(bmp, d.hints); err == nil {
		for _, result := range results {
			add(result.GetText())
		}
	}

	return payloads
}
