package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/wxmine/qr-analyzer/internal/models"
)

// 公众号文章页将关键元数据塞在内联脚本的 JS 变量里，优先于 DOM 选择器。
var (
	msgTitleRe   = regexp.MustCompile(`var\s+msg_title\s*=\s*['"]([^'"]*)['"](?:\.html\(false\))?`)
	createTimeRe = regexp.MustCompile(`var\s+createTime\s*=\s*['"]([^'"]*)['"];`)
	msgLinkRe    = regexp.MustCompile(`var\s+msg_link\s*=\s*['"]([^'"]*)['"];`)

	// YYYY-M-D 及中文日期两种写法
	dateRe = regexp.MustCompile(`\d{4}[-年]\d{1,2}[-月]\d{1,2}日?`)
)

// Selector fallback chains, tried in order, first match wins.
var (
	titleSelectors = []string{
		"h1.rich_media_title",
		"h2.rich_media_title",
		".rich_media_title",
		"h1",
		"title",
	}

	publishTimeSelectors = []string{
		"em.rich_media_meta_text",
		".rich_media_meta_text",
		`[id*="publish_time"]`,
		".publish_time",
	}

	accountNameSelectors = []string{
		"a.rich_media_meta_link",
		".rich_media_meta_link",
		`[id*="account"]`,
		".account_name",
		"#js_wx_follow_nickname",
	}

	copyrightSelectors = []string{
		`[class*="copyright"]`,
		`[id*="copyright"]`,
		"footer",
		".footer",
	}
)

// Attribute and keyword sets for the exhaustive copyright scan.
var (
	copyrightAttrs = []string{"copyright", "data-copyright", "powered-by", "data-powered-by"}
	authorAttrs    = []string{"name", "author", "label", "data-author", "data-name"}
	keywords       = []string{"版权", "copyright", "©"}
)

// Extractor mines article metadata out of fetched markup. Each of the ten
// fields is produced by an independent best-effort strategy; a field that
// finds nothing stays nil/empty and never disturbs the others.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the markup and fills the metadata fields of an ArticleRecord.
// URL, page number and QR payload are the caller's responsibility. The only
// error path is a markup that cannot be parsed at all.
func (e *Extractor) Extract(markup []byte) (*models.ArticleRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	record := &models.ArticleRecord{
		Title:       e.extractTitle(doc),
		PublishTime: e.extractPublishTime(doc),
		AccountName: e.extractAccountName(doc),
		Author:      e.extractAuthor(doc),
		ArticleLink: e.extractArticleLink(doc),
		Copyright:   e.extractCopyright(doc),
		MetaTags:    e.extractMetaTags(doc),
		Scripts:     e.extractScripts(doc),
		Labels:      e.extractLabels(doc),
		SEOInfo:     e.extractSEOInfo(doc),
	}
	return record, nil
}

// scriptAssignment returns the first capture of re over the inline bodies of
// all script elements, trimmed.
func scriptAssignment(doc *goquery.Document, re *regexp.Regexp) *string {
	var found *string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		if body == "" {
			return true
		}
		if m := re.FindStringSubmatch(body); m != nil {
			value := strings.TrimSpace(m[1])
			found = &value
			return false
		}
		return true
	})
	return found
}

// firstSelectorText returns the trimmed text of the first element matched by
// the ordered selector list.
func firstSelectorText(doc *goquery.Document, selectors []string) *string {
	for _, selector := range selectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			text := strings.TrimSpace(sel.Text())
			return &text
		}
	}
	return nil
}

func (e *Extractor) extractTitle(doc *goquery.Document) *string {
	if title := scriptAssignment(doc, msgTitleRe); title != nil {
		return title
	}
	return firstSelectorText(doc, titleSelectors)
}

func (e *Extractor) extractPublishTime(doc *goquery.Document) *string {
	if t := scriptAssignment(doc, createTimeRe); t != nil {
		return t
	}

	for _, selector := range publishTimeSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.Text())
		// 元素文本里再找日期形状的子串；找不到就原样返回
		if match := dateRe.FindString(text); match != "" {
			return &match
		}
		return &text
	}
	return nil
}

func (e *Extractor) extractAccountName(doc *goquery.Document) *string {
	// 关注栏里的嵌套结构优先
	if sel := doc.Find(".wx_follow_info .wx_follow_nickname").First(); sel.Length() > 0 {
		text := strings.TrimSpace(sel.Text())
		return &text
	}
	return firstSelectorText(doc, accountNameSelectors)
}

func (e *Extractor) extractAuthor(doc *goquery.Document) *string {
	sel := doc.Find(`meta[name="author"]`).First()
	if sel.Length() == 0 {
		return nil
	}
	if content, ok := sel.Attr("content"); ok {
		return &content
	}
	return nil
}

func (e *Extractor) extractArticleLink(doc *goquery.Document) *string {
	if link := scriptAssignment(doc, msgLinkRe); link != nil {
		return link
	}

	if sel := doc.Find(`link[rel="canonical"]`).First(); sel.Length() > 0 {
		if href, ok := sel.Attr("href"); ok && href != "" {
			return &href
		}
	}
	return nil
}

// extractCopyright scans every element of the document. This is an exhaustive
// accumulation, not a first-match search: all attribute hits, author-attribute
// hits and keyword matches are recorded side by side.
func (e *Extractor) extractCopyright(doc *goquery.Document) models.CopyrightInfo {
	info := models.NewCopyrightInfo()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)

		for _, attr := range copyrightAttrs {
			if value, ok := s.Attr(attr); ok && value != "" {
				info.CopyrightAttributes = append(info.CopyrightAttributes, models.AttributeHit{
					Attribute: attr,
					Value:     value,
					Tag:       tag,
				})
			}
		}

		for _, attr := range authorAttrs {
			if value, ok := s.Attr(attr); ok && value != "" {
				info.AuthorAttributes = append(info.AuthorAttributes, models.AttributeHit{
					Attribute: attr,
					Value:     value,
					Tag:       tag,
				})
			}
		}

		// 任意属性值里的关键词也要记录
		for _, attr := range s.Get(0).Attr {
			lowered := strings.ToLower(attr.Val)
			for _, keyword := range keywords {
				if strings.Contains(lowered, strings.ToLower(keyword)) {
					info.KeywordMatches = append(info.KeywordMatches, models.KeywordHit{
						Attribute: attr.Key,
						Value:     attr.Val,
						Keyword:   keyword,
						Tag:       tag,
					})
				}
			}
		}
	})

	if sel := doc.Find(`meta[name="copyright"]`).First(); sel.Length() > 0 {
		content, _ := sel.Attr("content")
		info.CopyrightAttributes = append(info.CopyrightAttributes, models.AttributeHit{
			Attribute: `meta[name="copyright"]`,
			Value:     content,
			Tag:       "meta",
		})
	}

	for _, selector := range copyrightSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				return
			}
			if strings.Contains(text, "©") ||
				strings.Contains(strings.ToLower(text), "copyright") ||
				strings.Contains(text, "版权") {
				info.KeywordMatches = append(info.KeywordMatches, models.KeywordHit{
					Attribute: "text_content",
					Value:     text,
					Keyword:   "版权相关文本",
					Tag:       goquery.NodeName(s),
				})
			}
		})
	}

	return info
}

func (e *Extractor) extractMetaTags(doc *goquery.Document) []models.MetaTag {
	tags := []models.MetaTag{}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		var tag models.MetaTag
		if v, ok := s.Attr("name"); ok && v != "" {
			tag.Name = v
		}
		if v, ok := s.Attr("content"); ok && v != "" {
			tag.Content = v
		}
		if v, ok := s.Attr("property"); ok && v != "" {
			tag.Property = v
		}
		if v, ok := s.Attr("http-equiv"); ok && v != "" {
			tag.HTTPEquiv = v
		}
		if tag != (models.MetaTag{}) {
			tags = append(tags, tag)
		}
	})
	return tags
}

func (e *Extractor) extractScripts(doc *goquery.Document) []models.ScriptInfo {
	scripts := []models.ScriptInfo{}
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		var info models.ScriptInfo
		if src, ok := s.Attr("src"); ok && src != "" {
			info.Src = src
		}
		if body := s.Text(); body != "" {
			info.Inline = true
			info.Length = utf8.RuneCountInString(body)
		}
		scripts = append(scripts, info)
	})
	return scripts
}

func (e *Extractor) extractLabels(doc *goquery.Document) []models.LabelInfo {
	labels := []models.LabelInfo{}
	doc.Find("label").Each(func(_ int, s *goquery.Selection) {
		info := models.LabelInfo{
			Text: strings.TrimSpace(s.Text()),
		}
		if forAttr, ok := s.Attr("for"); ok {
			info.For = &forAttr
		}
		labels = append(labels, info)
	})
	return labels
}

func (e *Extractor) extractSEOInfo(doc *goquery.Document) models.SEOInfo {
	var seo models.SEOInfo

	if sel := doc.Find(`meta[name="description"]`).First(); sel.Length() > 0 {
		content, _ := sel.Attr("content")
		seo.Description = &content
	}
	if sel := doc.Find(`meta[name="keywords"]`).First(); sel.Length() > 0 {
		content, _ := sel.Attr("content")
		seo.Keywords = &content
	}
	if sel := doc.Find(`meta[name="viewport"]`).First(); sel.Length() > 0 {
		content, _ := sel.Attr("content")
		seo.Viewport = &content
	}

	return seo
}
