package review

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/content-notifier/internal/model"
	"github.com/jwalitptl/content-notifier/internal/repository"
	"github.com/jwalitptl/content-notifier/pkg/logger"
)

// Resolver produces the deduplicated recipient list for one item.
//
// The order is: configured explicit addresses, then the content owner per the
// who-policy, then the administrator fallback when nothing else matched. A
// who-policy of "none" together with at least one valid explicit address
// short-circuits the owner and admin lookups entirely.
type Resolver struct {
	users    repository.UserRepository
	validate *validator.Validate
	logger   *logger.Logger
}

func NewResolver(users repository.UserRepository, logger *logger.Logger) *Resolver {
	return &Resolver{
		users:    users,
		validate: validator.New(),
		logger:   logger,
	}
}

// Resolve returns the recipients for an item. Lookup failures degrade to the
// next step in the chain instead of failing the run; an empty result means
// there is nobody to notify for this item.
func (r *Resolver) Resolve(ctx context.Context, cfg model.RunConfig, item *model.ContentItem, siteLanguage string) []model.Recipient {
	var recipients []model.Recipient
	seen := make(map[string]bool)

	add := func(email, language string) {
		key := strings.ToLower(email)
		if email == "" || seen[key] {
			return
		}
		seen[key] = true
		recipients = append(recipients, model.Recipient{Email: email, Language: language})
	}

	for _, raw := range cfg.ExplicitEmails {
		addr := strings.TrimSpace(raw)
		if addr == "" {
			continue
		}
		if err := r.validate.Var(addr, "email"); err != nil {
			r.logger.Debug("dropping invalid configured email address", "email", addr)
			continue
		}
		add(addr, fixedLanguage(cfg.LanguageOverride, siteLanguage))
	}

	if cfg.WhoPolicy == model.NotifyNone && len(recipients) > 0 {
		return recipients
	}

	var ownerID int64
	if cfg.WhoPolicy == model.NotifyModified {
		ownerID = item.ModifiedBy
	}
	if ownerID == 0 {
		ownerID = item.CreatedBy
	}

	if ownerID > 0 {
		owner, err := r.users.Get(ctx, ownerID)
		if err != nil {
			r.logger.Warn("owner lookup failed", "user_id", ownerID, "article_id", item.ID, "error", err.Error())
		} else {
			add(owner.Email, userLanguage(cfg.LanguageOverride, owner, siteLanguage))
		}
	}

	if len(recipients) == 0 {
		admins, err := r.users.FindAdmins(ctx, cfg.AdminEmails)
		if err != nil {
			r.logger.Warn("administrator lookup failed", "article_id", item.ID, "error", err.Error())
			return nil
		}
		for _, admin := range admins {
			add(admin.Email, userLanguage(cfg.LanguageOverride, admin, siteLanguage))
		}
	}

	return recipients
}

// userLanguage resolves the notification language for a directory user:
// the user's stored preference under the "user" policy, then the forced
// language, then the site default.
func userLanguage(override string, user *model.User, siteLanguage string) string {
	switch {
	case override == model.LanguageUser:
		if user.Language != "" {
			return user.Language
		}
		return siteLanguage
	case override != "":
		return override
	default:
		return siteLanguage
	}
}

// fixedLanguage resolves the language for recipients without a directory
// entry; "user" degrades to the site default here.
func fixedLanguage(override, siteLanguage string) string {
	if override == "" || override == model.LanguageUser {
		return siteLanguage
	}
	return override
}
