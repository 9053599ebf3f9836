package dispatcher

import (
	"net/url"
	"strings"
)

// DeepLink builds the send URL the external client pre-fills a chat from:
// <base>/send?phone=<digits>&text=<encoded>. The phone value must already be
// sanitized to digits. Spaces are encoded as %20 rather than '+' because the
// client's router does not decode form encoding in the text parameter.
func DeepLink(baseURL, phone, text string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")

	return strings.TrimRight(baseURL, "/") + "/send?phone=" + phone + "&text=" + encoded
}
