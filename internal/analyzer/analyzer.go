package analyzer

import (
	"context"
	"image"

	"github.com/wxmine/qr-analyzer/internal/analyzer/classify"
	"github.com/wxmine/qr-analyzer/internal/analyzer/extract"
	"github.com/wxmine/qr-analyzer/internal/analyzer/fetch"
	"github.com/wxmine/qr-analyzer/internal/analyzer/qrdetect"
	"github.com/wxmine/qr-analyzer/internal/analyzer/raster"
	"github.com/wxmine/qr-analyzer/internal/models"
	"github.com/wxmine/qr-analyzer/pkg/logger"
)

// Document is one opened PDF, abstracted so tests can drive the page loop
// without real files.
type Document interface {
	PageCount() int
	Render(page int) (image.Image, error)
	Close() error
}

// DocumentOpener opens the file at path, or fails with the document-fatal
// open error.
type DocumentOpener func(path string) (Document, error)

// Detector yields the distinct QR payloads of one page image.
type Detector interface {
	Detect(img image.Image) []string
}

// Fetcher retrieves raw markup for a classified article URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor mines metadata out of fetched markup.
type Extractor interface {
	Extract(markup []byte) (*models.ArticleRecord, error)
}

// Analyzer drives the per-page pipeline and aggregates one report per
// document. Failures below document level are folded into the report at the
// QR-item granularity; they never abort the loop.
type Analyzer struct {
	logger    logger.Logger
	open      DocumentOpener
	detector  Detector
	fetcher   Fetcher
	extractor Extractor
}

// Option overrides one pipeline component, mainly for tests.
type Option func(*Analyzer)

// WithDocumentOpener replaces the PDF opener.
func WithDocumentOpener(open DocumentOpener) Option {
	return func(a *Analyzer) {
		a.open = open
	}
}

// WithDetector replaces the QR detector.
func WithDetector(d Detector) Option {
	return func(a *Analyzer) {
		a.detector = d
	}
}

// WithFetcher replaces the article fetcher.
func WithFetcher(f Fetcher) Option {
	return func(a *Analyzer) {
		a.fetcher = f
	}
}

// WithExtractor replaces the metadata extractor.
func WithExtractor(e Extractor) Option {
	return func(a *Analyzer) {
		a.extractor = e
	}
}

// New assembles the default pipeline: go-fitz rasterizer, zxing QR detector,
// pooled HTTP fetcher, goquery extractor.
func New(log logger.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		logger: log,
		open: func(path string) (Document, error) {
			return raster.Open(path)
		},
		detector:  qrdetect.New(log),
		fetcher:   fetch.New(),
		extractor: extract.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full pipeline over one PDF and always returns a report.
// Only an unopenable document sets the top-level error; every other failure
// is embedded per item.
func (a *Analyzer) Analyze(ctx context.Context, path string) *models.AnalysisReport {
	report := models.NewReport()

	a.logger.Info("开始分析PDF文件", logger.String("path", path))

	doc, err := a.open(path)
	if err != nil {
		a.logger.Error("PDF打开失败", logger.String("path", path), logger.Error(err))
		report.Error = "PDF分析错误: " + err.Error()
		return report
	}
	defer doc.Close()

	pages := doc.PageCount()
	a.logger.Info("PDF打开成功", logger.Int("pages", pages))

	for page := 1; page <= pages; page++ {
		img, err := doc.Render(page)
		if err != nil {
			// 单页渲染失败只跳过该页
			a.logger.Warn("页面渲染失败，跳过",
				logger.Int("page", page),
				logger.Error(err),
			)
			continue
		}

		for _, payload := range a.detector.Detect(img) {
			report.TotalQRCodes++
			a.processPayload(ctx, report, payload, page)
		}
	}

	a.logger.Info("PDF分析完成",
		logger.Int("totalQRCodes", report.TotalQRCodes),
		logger.Int("wechatArticles", len(report.WechatArticles)),
	)

	return report
}

// processPayload routes one decoded payload into exactly one of the two
// output lists. A fetch or extract failure downgrades the item, nothing more.
func (a *Analyzer) processPayload(ctx context.Context, report *models.AnalysisReport, payload string, page int) {
	if !classify.IsArticleURL(payload) {
		report.OtherQRCodes = append(report.OtherQRCodes, models.GenericRecord{
			URL:        payload,
			PageNumber: page,
		})
		return
	}

	markup, err := a.fetcher.Fetch(ctx, payload)
	if err != nil {
		a.logger.Warn("微信文章抓取失败",
			logger.String("url", payload),
			logger.Error(err),
		)
		report.OtherQRCodes = append(report.OtherQRCodes, models.GenericRecord{
			URL:        payload,
			PageNumber: page,
			Error:      "文章分析错误: " + err.Error(),
		})
		return
	}

	record, err := a.extractor.Extract(markup)
	if err != nil {
		a.logger.Warn("微信文章解析失败",
			logger.String("url", payload),
			logger.Error(err),
		)
		report.OtherQRCodes = append(report.OtherQRCodes, models.GenericRecord{
			URL:        payload,
			PageNumber: page,
			Error:      "文章分析错误: " + err.Error(),
		})
		return
	}

	record.URL = payload
	record.QRURL = payload
	record.PageNumber = page
	report.WechatArticles = append(report.WechatArticles, *record)
}
