package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/juantap/web/internal/backend"
	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/notice"
	"github.com/juantap/web/internal/platform/httpx"
	"github.com/juantap/web/internal/platform/requestctx"
	"github.com/juantap/web/internal/session"
)

// writeNotice reports err to the user as a transient notice.
func writeNotice(w http.ResponseWriter, r *http.Request, err error, details map[string]any) {
	n := notice.FromError(err)
	logger := requestctx.Logger(r.Context())
	if n.Status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("code", n.Code), zap.Error(err))
	} else {
		logger.Info("request rejected", zap.String("code", n.Code), zap.Error(err))
	}
	httpx.WriteError(r.Context(), w, n.HTTPError().WithDetails(details))
}

// requireSession returns the session of r or answers 401.
func requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.Token == "" {
		writeNotice(w, r, backend.ErrUnauthorized, nil)
		return nil, false
	}
	return s, true
}

// profileFor builds the card profile of the session user: the cached or current user
// overlaid with the public profile record.
func profileFor(ctx context.Context, client *backend.Client, s *session.Session) (domain.User, error) {
	var base domain.User
	if s.User != nil {
		base = *s.User
	} else {
		user, err := client.CurrentUser(ctx)
		if err != nil {
			return domain.User{}, err
		}
		base = user
	}
	profile, err := client.UserProfile(ctx)
	if err != nil {
		requestctx.Logger(ctx).Debug("user profile unavailable, using cached user", zap.Error(err))
		return base, nil
	}
	return mergeProfile(base, profile), nil
}

func mergeProfile(base, profile domain.User) domain.User {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&base.Name, profile.Name)
	pick(&base.DisplayName, profile.DisplayName)
	pick(&base.Username, profile.Username)
	pick(&base.Email, profile.Email)
	pick(&base.Phone, profile.Phone)
	pick(&base.Website, profile.Website)
	pick(&base.Location, profile.Location)
	pick(&base.Bio, profile.Bio)
	pick(&base.AvatarURL, profile.AvatarURL)
	pick(&base.CoverImageURL, profile.CoverImageURL)
	if len(profile.SocialLinks) > 0 {
		base.SocialLinks = profile.SocialLinks
	}
	return base
}
