// Package sharing builds the public profile URL of a user and the artifacts derived from
// it: the QR code payload and image, the share action contract, and the vCard export.
package sharing

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/juantap/web/internal/domain"
)

// CopiedResetAfter is how long the "copied" confirmation stays visible after the profile
// URL is copied to the clipboard.
const CopiedResetAfter = 2 * time.Second

// DefaultQRSize is the edge length in pixels of generated QR images.
const DefaultQRSize = 256

// ProfileURL returns {base}/{segment} where segment is the username, falling back to the
// display name. When neither is set the base URL itself is returned. The segment is
// inserted verbatim; QR payloads carry exactly this string.
func ProfileURL(base string, user domain.User) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	segment := strings.TrimSpace(user.Username)
	if segment == "" {
		segment = strings.TrimSpace(user.DisplayName)
	}
	if segment == "" {
		return base
	}
	return base + "/" + segment
}

// QRPNG encodes content as a PNG QR code with medium error correction.
func QRPNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("sharing: empty qr content")
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("sharing: encode qr: %w", err)
	}
	return png, nil
}

// DataURI wraps PNG bytes as a data: URI suitable for an <img> src.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// ShareAction is the contract of the "Share" button: invoke the native share sheet with
// Title, Text and URL when the client supports it, otherwise copy URL to the clipboard
// and show a confirmation for CopiedResetAfter.
type ShareAction struct {
	URL              string
	Title            string
	Text             string
	CopiedResetAfter time.Duration
}

// NewShareAction builds the share action for a user's profile URL.
func NewShareAction(profileURL string, user domain.User) ShareAction {
	label := user.Label()
	title := "Digital business card"
	if label != "" {
		title = label + " | Digital business card"
	}
	return ShareAction{
		URL:              profileURL,
		Title:            title,
		Text:             "Check out my digital business card",
		CopiedResetAfter: CopiedResetAfter,
	}
}

// ResetMillis is CopiedResetAfter in milliseconds, for client-side timers.
func (a ShareAction) ResetMillis() int64 {
	return a.CopiedResetAfter.Milliseconds()
}
