package domain

import "strings"

// SocialLink is one entry of a profile's connect section.
type SocialLink struct {
	ID        string `json:"id"`
	Platform  string `json:"platform"`
	Username  string `json:"username,omitempty"`
	URL       string `json:"url,omitempty"`
	IsVisible bool   `json:"isVisible"`
}

// User is the canonical user record, including the public profile fields that cards
// display. Nested backend profile objects are flattened into it.
type User struct {
	ID            string       `json:"id"`
	Name          string       `json:"name,omitempty"`
	DisplayName   string       `json:"displayName,omitempty"`
	Username      string       `json:"username,omitempty"`
	Email         string       `json:"email,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	Website       string       `json:"website,omitempty"`
	Location      string       `json:"location,omitempty"`
	Bio           string       `json:"bio,omitempty"`
	AvatarURL     string       `json:"avatarUrl,omitempty"`
	CoverImageURL string       `json:"coverImageUrl,omitempty"`
	SocialLinks   []SocialLink `json:"socialLinks"`
}

// Label returns the best human-readable name for the user.
func (u User) Label() string {
	for _, candidate := range []string{u.DisplayName, u.Name, u.Username} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return ""
}

// VisibleSocialLinks returns the links flagged visible, preserving their order.
func VisibleSocialLinks(links []SocialLink) []SocialLink {
	out := make([]SocialLink, 0, len(links))
	for _, link := range links {
		if link.IsVisible {
			out = append(out, link)
		}
	}
	return out
}
