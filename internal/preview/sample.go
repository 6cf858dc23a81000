package preview

import "github.com/juantap/web/internal/domain"

// SampleProfile is the placeholder profile shown when a template is previewed without a
// signed-in user.
func SampleProfile() domain.User {
	return domain.User{
		ID:          "sample",
		DisplayName: "Juan Dela Cruz",
		Username:    "juandelacruz",
		Email:       "juan@example.com",
		Phone:       "+63 917 000 0000",
		Website:     "https://example.com",
		Location:    "Manila, Philippines",
		Bio:         "Product designer and weekend photographer. Say hi!",
		SocialLinks: []domain.SocialLink{
			{ID: "facebook", Platform: "facebook", URL: "https://facebook.com/juandelacruz", IsVisible: true},
			{ID: "instagram", Platform: "instagram", URL: "https://instagram.com/juandelacruz", IsVisible: true},
			{ID: "linkedin", Platform: "linkedin", URL: "https://linkedin.com/in/juandelacruz", IsVisible: true},
			{ID: "github", Platform: "github", URL: "https://github.com/juandelacruz", IsVisible: true},
		},
	}
}
