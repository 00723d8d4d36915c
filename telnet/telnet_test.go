package telnet

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/hazyhaar/termweb/fetch"
	"github.com/hazyhaar/termweb/session"
)

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*fetch.Result, error) {
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, fmt.Errorf("no page for %s", rawURL)
	}
	return &fetch.Result{Body: []byte(body), ContentType: "text/html", FinalURL: rawURL}, nil
}

func (f *stubFetcher) FetchImage(_ context.Context, rawURL, _ string) (*fetch.Result, error) {
	return nil, fmt.Errorf("no image for %s", rawURL)
}

func newTestHandler(pages map[string]string) (*handler, *bytes.Buffer) {
	sess := session.New(session.Config{Fetcher: &stubFetcher{pages: pages}})
	sess.Settings().JSMode = false
	sess.Settings().AutoImages = false
	var buf bytes.Buffer
	return newHandler(sess, &buf, "", slog.Default()), &buf
}

func TestExecute_Help(t *testing.T) {
	h, buf := newTestHandler(nil)
	if quit := h.execute(context.Background(), "help"); quit {
		t.Error("help should not quit")
	}
	if !strings.Contains(buf.String(), "open <url>") {
		t.Errorf("help output:\n%s", buf.String())
	}
}

func TestExecute_Quit(t *testing.T) {
	for _, cmd := range []string{"quit", "exit", "q"} {
		h, _ := newTestHandler(nil)
		if quit := h.execute(context.Background(), cmd); !quit {
			t.Errorf("%q should quit", cmd)
		}
	}
}

func TestExecute_OpenAndFollow(t *testing.T) {
	// WHAT: open renders the page over CRLF; f follows the link registry.
	h, buf := newTestHandler(map[string]string{
		"https://example.com": `<html><body><h1>Front</h1>` +
			`<a href="https://example.com/story">continue reading</a></body></html>`,
		"https://example.com/story": `<html><body><p>the full story</p></body></html>`,
	})
	ctx := context.Background()

	h.execute(ctx, "open https://example.com")
	out := buf.String()
	if !strings.Contains(out, "Front") {
		t.Fatalf("page output:\n%s", out)
	}
	if !strings.Contains(out, "\r\n") {
		t.Error("output should use CRLF line endings")
	}

	buf.Reset()
	h.execute(ctx, "f 1")
	if !strings.Contains(buf.String(), "the full story") {
		t.Errorf("follow output:\n%s", buf.String())
	}

	buf.Reset()
	h.execute(ctx, "f 99")
	if !strings.Contains(buf.String(), "Error:") {
		t.Errorf("out-of-range follow output:\n%s", buf.String())
	}
}

func TestExecute_NumericShortcut(t *testing.T) {
	h, buf := newTestHandler(map[string]string{
		"https://example.com": `<html><body>` +
			`<a href="https://example.com/next">go to next page</a></body></html>`,
		"https://example.com/next": `<html><body><p>next page body</p></body></html>`,
	})
	ctx := context.Background()
	h.execute(ctx, "open https://example.com")
	buf.Reset()

	h.execute(ctx, "1")
	if !strings.Contains(buf.String(), "next page body") {
		t.Errorf("numeric output:\n%s", buf.String())
	}
}

func TestExecute_SettingsToggles(t *testing.T) {
	h, buf := newTestHandler(nil)
	ctx := context.Background()

	h.execute(ctx, "js")
	if h.sess.Settings().JSMode {
		t.Error("js toggle should flip JSMode off")
	}
	h.execute(ctx, "ua")
	if !h.sess.Settings().MobileUA {
		t.Error("ua toggle should flip MobileUA on")
	}
	h.execute(ctx, "images")
	if h.sess.Settings().AutoImages {
		t.Error("images toggle should flip AutoImages off")
	}
	h.execute(ctx, "linkfilter")
	if h.sess.Settings().FilterIcons {
		t.Error("linkfilter toggle should flip FilterIcons off")
	}

	buf.Reset()
	h.execute(ctx, "width 120")
	if h.sess.Settings().Width != 120 {
		t.Errorf("width = %d", h.sess.Settings().Width)
	}
	h.execute(ctx, "width 10")
	if !strings.Contains(buf.String(), "Error:") {
		t.Error("width 10 should report an error")
	}

	h.execute(ctx, "resolution 640x480")
	if h.sess.Settings().Width != 80 {
		t.Errorf("preset width = %d", h.sess.Settings().Width)
	}
}

func TestExecute_ExplicitFlagArguments(t *testing.T) {
	// WHAT: js/images/linkfilter accept on|off and set the flag
	// absolutely; repeating "on" must not flip the state.
	h, buf := newTestHandler(nil)
	ctx := context.Background()
	st := h.sess.Settings()

	st.JSMode = true
	h.execute(ctx, "js on")
	if !st.JSMode {
		t.Error("js on from the on state should stay on")
	}
	if !strings.Contains(buf.String(), "Browser rendering: on") {
		t.Errorf("output:\n%s", buf.String())
	}
	h.execute(ctx, "js off")
	if st.JSMode {
		t.Error("js off should turn JSMode off")
	}

	h.execute(ctx, "images on")
	h.execute(ctx, "images on")
	if !st.AutoImages {
		t.Error("images on twice should stay on")
	}
	h.execute(ctx, "linkfilter off")
	if st.FilterIcons {
		t.Error("linkfilter off should turn FilterIcons off")
	}

	buf.Reset()
	h.execute(ctx, "js maybe")
	if !strings.Contains(buf.String(), "usage: js on|off") {
		t.Errorf("bad argument output:\n%s", buf.String())
	}
	if st.JSMode {
		t.Error("bad argument must not change the flag")
	}
}

func TestExecute_UAArgument(t *testing.T) {
	h, buf := newTestHandler(nil)
	ctx := context.Background()
	st := h.sess.Settings()

	h.execute(ctx, "ua mobile")
	if !st.MobileUA {
		t.Error("ua mobile should set MobileUA")
	}
	h.execute(ctx, "ua mobile")
	if !st.MobileUA {
		t.Error("ua mobile twice should stay mobile")
	}
	h.execute(ctx, "ua pc")
	if st.MobileUA {
		t.Error("ua pc should clear MobileUA")
	}

	buf.Reset()
	h.execute(ctx, "ua toaster")
	if !strings.Contains(buf.String(), "usage: ua pc|mobile") {
		t.Errorf("bad argument output:\n%s", buf.String())
	}
}

func TestExecute_ImgWidth(t *testing.T) {
	// WHAT: img width sets the inline art width with a 20-200 clamp.
	h, buf := newTestHandler(nil)
	ctx := context.Background()
	st := h.sess.Settings()

	h.execute(ctx, "img width 40")
	if st.ASCIIWidth != 40 {
		t.Errorf("ascii width = %d, want 40", st.ASCIIWidth)
	}
	h.execute(ctx, "img width 5")
	if st.ASCIIWidth != 20 {
		t.Errorf("ascii width = %d, want clamp to 20", st.ASCIIWidth)
	}
	h.execute(ctx, "img width 999")
	if st.ASCIIWidth != 200 {
		t.Errorf("ascii width = %d, want clamp to 200", st.ASCIIWidth)
	}

	buf.Reset()
	h.execute(ctx, "img width")
	if !strings.Contains(buf.String(), "usage: img width <n>") {
		t.Errorf("missing argument output:\n%s", buf.String())
	}
	buf.Reset()
	h.execute(ctx, "img width wide")
	if !strings.Contains(buf.String(), "usage: img width <n>") {
		t.Errorf("bad argument output:\n%s", buf.String())
	}
}

func TestExecute_Clear(t *testing.T) {
	for _, cmd := range []string{"clear", "cls"} {
		h, buf := newTestHandler(nil)
		h.execute(context.Background(), cmd)
		if !strings.Contains(buf.String(), "\x1b[2J") {
			t.Errorf("%q output = %q, want ANSI clear", cmd, buf.String())
		}
		if strings.Contains(buf.String(), "Unknown command") {
			t.Errorf("%q treated as unknown", cmd)
		}
	}
}

func TestExecute_ResolutionValidates(t *testing.T) {
	h, buf := newTestHandler(nil)
	ctx := context.Background()

	h.execute(ctx, "resolution")
	if !strings.Contains(buf.String(), "usage: resolution 640x480|80x30") {
		t.Errorf("missing preset output:\n%s", buf.String())
	}
	if h.sess.Settings().Width != 110 {
		t.Errorf("width changed without a valid preset: %d", h.sess.Settings().Width)
	}

	h.execute(ctx, "resolution 80x30")
	if h.sess.Settings().Width != 80 {
		t.Errorf("preset width = %d", h.sess.Settings().Width)
	}
}

func TestExecute_ServeStart(t *testing.T) {
	// WHAT: serve start <dir> [port] runs the file server; stop frees it.
	h, buf := newTestHandler(nil)
	ctx := context.Background()
	dir := t.TempDir()

	h.execute(ctx, "serve start "+dir)
	if !strings.Contains(buf.String(), "Serving "+dir+" at http://") {
		t.Fatalf("start output:\n%s", buf.String())
	}

	buf.Reset()
	h.execute(ctx, "serve stop")
	if !strings.Contains(buf.String(), "File server stopped.") {
		t.Errorf("stop output:\n%s", buf.String())
	}

	buf.Reset()
	h.execute(ctx, "serve start "+dir+" notaport")
	if !strings.Contains(buf.String(), "usage: serve start <dir> [port] | serve stop") {
		t.Errorf("bad port output:\n%s", buf.String())
	}

	buf.Reset()
	h.execute(ctx, "serve")
	if !strings.Contains(buf.String(), "usage: serve start <dir> [port] | serve stop") {
		t.Errorf("no dir output:\n%s", buf.String())
	}
}

func TestExecute_Searchmode(t *testing.T) {
	h, buf := newTestHandler(nil)
	ctx := context.Background()

	h.execute(ctx, "searchmode pw")
	if got := h.sess.Settings().Provider; string(got) != "browser" {
		t.Errorf("provider = %q", got)
	}
	buf.Reset()
	h.execute(ctx, "searchmode bing")
	if !strings.Contains(buf.String(), "usage:") {
		t.Errorf("bad provider output:\n%s", buf.String())
	}
}

func TestExecute_Unknown(t *testing.T) {
	h, buf := newTestHandler(nil)
	h.execute(context.Background(), "frobnicate")
	if !strings.Contains(buf.String(), "Unknown command") {
		t.Errorf("output:\n%s", buf.String())
	}
}

func TestPrompt_ReflectsSettings(t *testing.T) {
	h, buf := newTestHandler(nil)
	h.prompt()
	// JSMode and AutoImages were forced off by the test constructor.
	if !strings.Contains(buf.String(), "[W:110 JS:off IMG:off Filter:on] > ") {
		t.Errorf("prompt = %q", buf.String())
	}
}

func TestStripTelnet(t *testing.T) {
	// WHAT: IAC option and subnegotiation sequences vanish; printable
	// text and tabs survive.
	in := string([]byte{cmdIAC, cmdDO, optEcho}) + "open\texample.com\r" +
		string([]byte{cmdIAC, cmdSB, optLinemode, 1, cmdIAC, cmdSE})
	if got := stripTelnet(in); got != "open\texample.com" {
		t.Errorf("stripTelnet = %q", got)
	}
}

func TestListURLs_Empty(t *testing.T) {
	h, buf := newTestHandler(nil)
	h.execute(context.Background(), "links")
	if !strings.Contains(buf.String(), "No links") {
		t.Errorf("output:\n%s", buf.String())
	}
}
