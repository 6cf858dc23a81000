package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/juantap/web/internal/domain"
)

var (
	userIDKeys          = []string{"id", "user_id", "userId"}
	userNameKeys        = []string{"name", "full_name", "fullName"}
	userDisplayNameKeys = []string{"display_name", "displayName"}
	userUsernameKeys    = []string{"username", "user_name", "userName", "handle"}
	userEmailKeys       = []string{"email"}
	userPhoneKeys       = []string{"phone", "phone_number", "phoneNumber", "contact_number", "contactNumber"}
	userWebsiteKeys     = []string{"website", "website_url", "websiteUrl"}
	userLocationKeys    = []string{"location", "address"}
	userBioKeys         = []string{"bio", "about"}
	userAvatarKeys      = []string{"avatar_url", "avatarUrl", "avatar", "profile_image", "profileImage", "profile_picture", "profilePicture"}
	userCoverKeys       = []string{"cover_image", "cover_photo", "coverImage", "coverPhoto", "coverImageUrl", "cover_url"}
	socialLinksKeys     = []string{"social_links", "socialLinks"}
	profileKeys         = []string{"profile"}

	linkIDKeys       = []string{"id"}
	linkPlatformKeys = []string{"platform", "type", "name"}
	linkUsernameKeys = []string{"username", "handle"}
	linkURLKeys      = []string{"url", "link", "href"}
	linkVisibleKeys  = []string{"is_visible", "isVisible", "visible"}
)

// otherPlatform is assigned to links that name no platform.
const otherPlatform = "other"

// User normalizes a backend user record. Fields of a nested "profile" object are merged
// in, with top-level values taking precedence.
func User(raw any) domain.User {
	obj := asObject(raw)
	profile := asObject(first(obj, profileKeys...))

	field := func(keys ...string) string {
		if v := stringField(obj, keys...); v != "" {
			return v
		}
		return stringField(profile, keys...)
	}

	user := domain.User{
		ID:            field(userIDKeys...),
		Name:          field(userNameKeys...),
		DisplayName:   field(userDisplayNameKeys...),
		Username:      field(userUsernameKeys...),
		Email:         field(userEmailKeys...),
		Phone:         field(userPhoneKeys...),
		Website:       field(userWebsiteKeys...),
		Location:      field(userLocationKeys...),
		Bio:           field(userBioKeys...),
		AvatarURL:     field(userAvatarKeys...),
		CoverImageURL: field(userCoverKeys...),
	}
	// The profile record's own id is not the user's id.
	if stringField(obj, userIDKeys...) == "" {
		user.ID = stringField(profile, "user_id", "userId")
	}

	linksValue, ok := lookup(obj, socialLinksKeys...)
	if !ok {
		linksValue, _ = lookup(profile, socialLinksKeys...)
	}
	user.SocialLinks = SocialLinks(linksValue)
	return user
}

// UserJSON normalizes a JSON-encoded user. Envelopes of the form {"user": {...}} or
// {"data": {...}} are unwrapped.
func UserJSON(data []byte) (domain.User, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.User{}, fmt.Errorf("normalize: decode user: %w", err)
	}
	obj := asObject(raw)
	for _, key := range []string{"user", "data"} {
		if inner := asObject(obj[key]); len(inner) > 0 && !hasAny(obj, userIDKeys...) {
			obj = mergeEnvelope(obj, key, inner)
			break
		}
	}
	return User(obj), nil
}

// mergeEnvelope lifts inner to the top level while keeping sibling keys such as
// "profile" and "social_links" that some endpoints return next to the user object.
func mergeEnvelope(outer object, key string, inner object) object {
	merged := make(object, len(inner)+len(outer))
	for k, v := range outer {
		if k != key {
			merged[k] = v
		}
	}
	for k, v := range inner {
		merged[k] = v
	}
	return merged
}

// SocialLinks normalizes a social link collection given as a native array or a
// JSON-encoded string. Links without an id receive one derived from their platform.
func SocialLinks(value any) []domain.SocialLink {
	items := list(value)
	links := make([]domain.SocialLink, 0, len(items))
	taken := map[string]bool{}
	pending := make([]int, 0)

	for _, item := range items {
		obj := asObject(item)
		if len(obj) == 0 {
			continue
		}
		link := domain.SocialLink{
			ID:       stringField(obj, linkIDKeys...),
			Platform: strings.ToLower(stringField(obj, linkPlatformKeys...)),
			Username: stringField(obj, linkUsernameKeys...),
			URL:      stringField(obj, linkURLKeys...),
		}
		if link.Platform == "" && link.URL == "" && link.Username == "" {
			continue
		}
		if link.Platform == "" {
			link.Platform = otherPlatform
		}
		visible, ok := boolField(obj, linkVisibleKeys...)
		link.IsVisible = !ok || visible

		if link.ID != "" {
			taken[link.ID] = true
		} else {
			pending = append(pending, len(links))
		}
		links = append(links, link)
	}

	for _, idx := range pending {
		links[idx].ID = deriveLinkID(links[idx].Platform, taken)
	}
	return links
}

func deriveLinkID(platform string, taken map[string]bool) string {
	id := platform
	for n := 2; taken[id]; n++ {
		id = platform + "-" + strconv.Itoa(n)
	}
	taken[id] = true
	return id
}

func first(obj object, keys ...string) any {
	value, _ := lookup(obj, keys...)
	return value
}

func hasAny(obj object, keys ...string) bool {
	_, ok := lookup(obj, keys...)
	return ok
}
