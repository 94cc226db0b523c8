package classify

import (
	"regexp"
)

// 微信公众号文章链接的固定模式集合。匹配是对整个 payload 的子串搜索，
// payload 不要求是合法 URL。
var articlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)mp\.weixin\.qq\.com`),
	regexp.MustCompile(`(?i)weixin\.qq\.com.*article`),
	regexp.MustCompile(`(?i)mp\.weixin\.qq\.com/s\?`),
}

// IsArticleURL reports whether a decoded QR payload has the WeChat article URL
// shape. Pure function: classification depends only on the string, never on
// reachability.
func IsArticleURL(text string) bool {
	for _, pattern := range articlePatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
