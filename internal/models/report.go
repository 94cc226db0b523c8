package models

import (
    "time"
)

// AnalysisReport 单个PDF文档的聚合分析结果
//
// Invariant: TotalQRCodes == len(WechatArticles) + len(OtherQRCodes). Every
// decoded payload lands in exactly one of the two lists.
type AnalysisReport struct {
    TotalQRCodes   int             `json:"total_qr_codes"`
    WechatArticles []ArticleRecord `json:"wechat_articles"`
    OtherQRCodes   []GenericRecord `json:"other_qr_codes"`
    AnalysisTime   string          `json:"analysis_time"`
    // Error is set only when the document itself could not be opened.
    Error string `json:"error,omitempty"`
}

// NewReport returns an empty report stamped with the current time. Lists are
// allocated so they serialize as [] rather than null.
func NewReport() *AnalysisReport {
    return &AnalysisReport{
        WechatArticles: []ArticleRecord{},
        OtherQRCodes:   []GenericRecord{},
        AnalysisTime:   time.Now().Format(time.RFC3339),
    }
}

// SafeCopy returns a minimal report that is guaranteed to serialize, used when
// the full report failed JSON encoding.
func (r *AnalysisReport) SafeCopy(reason string) *AnalysisReport {
    return &AnalysisReport{
        TotalQRCodes:   r.TotalQRCodes,
        WechatArticles: []ArticleRecord{},
        OtherQRCodes:   []GenericRecord{},
        AnalysisTime:   r.AnalysisTime,
        Error:          reason,
    }
}

// ArticleRecord 微信公众号文章的结构化元数据
//
// Nullable fields stay nil when the corresponding extraction strategy found
// nothing; they serialize as JSON null.
type ArticleRecord struct {
    URL         string        `json:"url"`
    Title       *string       `json:"title"`
    PublishTime *string       `json:"publish_time"`
    AccountName *string       `json:"account_name"`
    Author      *string       `json:"author"`
    ArticleLink *string       `json:"article_link"`
    Copyright   CopyrightInfo `json:"copyright"`
    MetaTags    []MetaTag     `json:"meta_tags"`
    Scripts     []ScriptInfo  `json:"scripts"`
    Labels      []LabelInfo   `json:"labels"`
    SEOInfo     SEOInfo       `json:"seo_info"`
    PageNumber  int           `json:"page_number"`
    QRURL       string        `json:"qr_url"`
}

// GenericRecord 非文章二维码，或文章分析失败后降级的条目
type GenericRecord struct {
    URL        string `json:"url"`
    PageNumber int    `json:"page_number"`
    Error      string `json:"error,omitempty"`
}

// CopyrightInfo collects heterogeneous copyright signals as three parallel
// ordered lists. The consumer inspects all candidates; there is no single
// scalar answer.
type CopyrightInfo struct {
    CopyrightAttributes []AttributeHit `json:"copyright_attributes"`
    AuthorAttributes    []AttributeHit `json:"author_attributes"`
    KeywordMatches      []KeywordHit   `json:"keyword_matches"`
}

// NewCopyrightInfo returns a CopyrightInfo with allocated lists.
func NewCopyrightInfo() CopyrightInfo {
    return CopyrightInfo{
        CopyrightAttributes: []AttributeHit{},
        AuthorAttributes:    []AttributeHit{},
        KeywordMatches:      []KeywordHit{},
    }
}

// AttributeHit 命中版权/作者属性的元素
type AttributeHit struct {
    Attribute string `json:"attribute"`
    Value     string `json:"value"`
    Tag       string `json:"tag"`
}

// KeywordHit 属性值或文本内容中命中关键词的元素
type KeywordHit struct {
    Attribute string `json:"attribute"`
    Value     string `json:"value"`
    Keyword   string `json:"keyword"`
    Tag       string `json:"tag"`
}

// MetaTag holds the subset of meta attributes the element actually carries.
type MetaTag struct {
    Name      string `json:"name,omitempty"`
    Content   string `json:"content,omitempty"`
    Property  string `json:"property,omitempty"`
    HTTPEquiv string `json:"http-equiv,omitempty"`
}

// ScriptInfo describes one script element. External src and inline body are
// not mutually exclusive.
type ScriptInfo struct {
    Src    string `json:"src,omitempty"`
    Inline bool   `json:"inline,omitempty"`
    Length int    `json:"length,omitempty"`
}

// LabelInfo describes one label element.
type LabelInfo struct {
    Text string  `json:"text"`
    For  *string `json:"for"`
}

// SEOInfo keys are present only when the corresponding meta tag exists.
type SEOInfo struct {
    Description *string `json:"description,omitempty"`
    Keywords    *string `json:"keywords,omitempty"`
    Viewport    *string `json:"viewport,omitempty"`
}
