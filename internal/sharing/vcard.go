package sharing

import (
	"strings"

	"github.com/juantap/web/internal/domain"
)

// VCard renders the contact block of user as a vCard 3.0 document with CRLF line
// endings. profileURL is included as an additional URL when set.
func VCard(user domain.User, profileURL string) string {
	var b strings.Builder
	line := func(parts ...string) {
		b.WriteString(fold(strings.Join(parts, "")))
		b.WriteString("\r\n")
	}

	name := user.Label()
	line("BEGIN:VCARD")
	line("VERSION:3.0")
	line("FN:", escape(name))
	family, given := splitName(firstNonEmpty(user.Name, name))
	line("N:", escape(family), ";", escape(given), ";;;")
	if user.Username != "" {
		line("NICKNAME:", escape(user.Username))
	}
	if user.Email != "" {
		line("EMAIL;TYPE=INTERNET:", escape(user.Email))
	}
	if user.Phone != "" {
		line("TEL;TYPE=CELL:", escape(user.Phone))
	}
	if user.Website != "" {
		line("URL:", escape(user.Website))
	}
	if profileURL != "" && profileURL != user.Website {
		line("URL;TYPE=PROFILE:", escape(profileURL))
	}
	if user.Location != "" {
		line("ADR;TYPE=HOME:;;", escape(user.Location), ";;;;")
	}
	if user.Bio != "" {
		line("NOTE:", escape(user.Bio))
	}
	if strings.HasPrefix(user.AvatarURL, "https://") || strings.HasPrefix(user.AvatarURL, "http://") {
		line("PHOTO;VALUE=URI:", user.AvatarURL)
	}
	for _, link := range domain.VisibleSocialLinks(user.SocialLinks) {
		if link.URL == "" {
			continue
		}
		line("X-SOCIALPROFILE;TYPE=", escape(link.Platform), ":", escape(link.URL))
	}
	line("END:VCARD")
	return b.String()
}

func splitName(full string) (family, given string) {
	full = strings.TrimSpace(full)
	idx := strings.LastIndex(full, " ")
	if idx < 0 {
		return "", full
	}
	return full[idx+1:], full[:idx]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var vcardEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escape(value string) string {
	return vcardEscaper.Replace(strings.TrimSpace(value))
}

// fold wraps content lines longer than 75 octets, continuing with a single space.
// Splits never fall inside a multi-byte rune.
func fold(line string) string {
	const limit = 75
	if len(line) <= limit {
		return line
	}
	var b strings.Builder
	width := 0
	for _, r := range line {
		size := len(string(r))
		if width+size > limit {
			b.WriteString("\r\n ")
			width = 1
		}
		b.WriteRune(r)
		width += size
	}
	return b.String()
}
