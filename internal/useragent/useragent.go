// Package useragent holds the browser identities sent on every outbound
// request, browser-driven or plain HTTP.
package useragent

const (
	Desktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/118 Safari/537.36"
	Mobile = "Mozilla/5.0 (Linux; Android 14; Pixel 7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/118 Mobile Safari/537.36"
)
