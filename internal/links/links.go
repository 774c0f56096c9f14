// Package links builds the public, edit and backend URLs embedded in
// notification mails.
package links

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Config holds the site URL roots.
type Config struct {
	SiteBaseURL  string `mapstructure:"base_url"`
	AdminBaseURL string `mapstructure:"admin_base_url"`
}

// Builder constructs article URLs. BackendHook, when set, post-processes the
// backend login URL once after construction; some security gateways require
// extra query parameters there.
type Builder struct {
	siteBase    string
	adminBase   string
	backendHook func(string) string
}

// Option configures a Builder.
type Option func(*Builder)

// WithBackendHook installs the backend URL post-processing hook.
func WithBackendHook(hook func(string) string) Option {
	return func(b *Builder) {
		b.backendHook = hook
	}
}

func NewBuilder(cfg Config, opts ...Option) *Builder {
	b := &Builder{
		siteBase:  strings.TrimRight(cfg.SiteBaseURL, "/"),
		adminBase: strings.TrimRight(cfg.AdminBaseURL, "/"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SiteBaseURL returns the public root of the site.
func (b *Builder) SiteBaseURL() string {
	return b.siteBase
}

// PublicURL returns the canonical frontend URL of an article.
func (b *Builder) PublicURL(articleID, categoryID int64, language string) string {
	url := fmt.Sprintf("%s/index.php?option=com_content&view=article&id=%d&catid=%d", b.siteBase, articleID, categoryID)
	if language != "" && language != "*" {
		url += "&lang=" + language
	}
	return url
}

// EditURL returns the frontend edit URL of an article, with a return address
// back to the site root.
func (b *Builder) EditURL(articleID, categoryID int64, language string) string {
	returnTo := base64.StdEncoding.EncodeToString([]byte(b.siteBase))
	return fmt.Sprintf("%s&task=article.edit&a_id=%d&return=%s", b.PublicURL(articleID, categoryID, language), articleID, returnTo)
}

// BackendURL returns the administrator edit URL of an article, passed through
// the backend hook when one is installed.
func (b *Builder) BackendURL(articleID int64) string {
	url := fmt.Sprintf("%s/index.php?option=com_content&task=article.edit&id=%d", b.adminBase, articleID)
	if b.backendHook != nil {
		url = b.backendHook(url)
	}
	return url
}
