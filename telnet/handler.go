package telnet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hazyhaar/termweb/fileserve"
	"github.com/hazyhaar/termweb/search"
	"github.com/hazyhaar/termweb/session"
)

const clearScreen = "\x1b[2J\x1b[H"

const bannerText = `termweb - text mode web browser

Type "open <url>" to browse, "s <words>" to search, "help" for commands.
`

const helpText = `Commands:
  open <url>, o <url>   open a page
  s <words>             web search
  <number>              open search result or link by index
  f <n>                 follow link n
  links                 list links on the current page
  img <n> | all | list  show image n as ASCII art, all, or list sources
  back, fw              history back / forward
  reload, r             re-render the current page
  save <path>           write the current page text to a file
  img width <n>         set inline art width (20-200)
  width <n>             set terminal width (60-200)
  resolution <preset>   640x480 | 80x30 compact preset
  js [on|off]           browser rendering
  ua [pc|mobile]        user agent
  images [on|off]       inline ASCII art
  linkfilter [on|off]   icon-link filtering
  searchmode <m>        auto | cse | browser
  serve start <dir> [port] | serve stop   static file server
  clear                 clear the screen
  quit                  disconnect
`

// handler runs one connection's command loop against its session.
type handler struct {
	sess     *session.Session
	w        io.Writer
	logger   *slog.Logger
	serveDir string
	files    *fileserve.Server
}

func newHandler(sess *session.Session, w io.Writer, serveDir string, logger *slog.Logger) *handler {
	return &handler{
		sess:     sess,
		w:        w,
		logger:   logger,
		serveDir: serveDir,
		files:    fileserve.New(logger),
	}
}

// shutdown releases connection-scoped resources.
func (h *handler) shutdown() {
	if _, _, ok := h.files.Running(); ok {
		h.files.Stop()
	}
}

func (h *handler) banner() {
	h.print(clearScreen)
	h.print(bannerText)
}

// prompt writes the status line showing the settings commands toggle.
func (h *handler) prompt() {
	st := h.sess.Settings()
	h.print(fmt.Sprintf("[W:%d JS:%s IMG:%s Filter:%s] > ",
		st.Width, onOff(st.JSMode), onOff(st.AutoImages), onOff(st.FilterIcons)))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// execute runs one command line. Returns true when the client quits.
func (h *handler) execute(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	cmd = strings.ToLower(cmd)
	arg = strings.TrimSpace(arg)

	if n, err := strconv.Atoi(cmd); err == nil {
		h.run(func() error { return h.sess.OpenNumeric(ctx, n) }, true)
		return false
	}

	switch cmd {
	case "quit", "exit", "q":
		h.println("Bye.")
		return true
	case "help", "h", "?":
		h.print(helpText)
	case "open", "o", "goto", "g":
		if arg == "" {
			h.println("usage: open <url>")
			return false
		}
		h.run(func() error { return h.sess.LoadURL(ctx, arg) }, true)
	case "s", "search":
		if arg == "" {
			h.println("usage: s <words>")
			return false
		}
		h.run(func() error { return h.sess.Search(ctx, arg) }, true)
	case "f", "follow":
		n, err := strconv.Atoi(arg)
		if err != nil {
			h.println("usage: f <n>")
			return false
		}
		h.run(func() error { return h.sess.OpenLink(ctx, n) }, true)
	case "back", "b":
		h.run(func() error { return h.sess.Back(ctx) }, true)
	case "fw", "forward":
		h.run(func() error { return h.sess.Forward(ctx) }, true)
	case "reload", "r":
		h.run(func() error { return h.sess.Reload(ctx) }, true)
	case "links":
		h.listURLs("Links", h.sess.Links())
	case "img":
		h.imgCommand(ctx, arg)
	case "save":
		if arg == "" {
			h.println("usage: save <path>")
			return false
		}
		if err := h.sess.Save(arg); err != nil {
			h.println("Error: " + err.Error())
			return false
		}
		h.println("Saved to " + arg)
	case "width", "w":
		n, err := strconv.Atoi(arg)
		if err != nil {
			h.println("usage: width <n>")
			return false
		}
		if err := h.sess.Settings().SetWidth(n); err != nil {
			h.println("Error: " + err.Error())
		}
	case "clear", "cls":
		h.print(clearScreen)
	case "resolution":
		switch arg {
		case "640x480", "80x30":
			h.sess.Settings().ApplyResolutionPreset()
			h.println("Resolution " + arg + " applied (width 80).")
		default:
			h.println("usage: resolution 640x480|80x30")
		}
	case "js":
		h.setFlag("js", arg, &h.sess.Settings().JSMode, "Browser rendering")
	case "ua":
		st := h.sess.Settings()
		switch arg {
		case "":
			st.MobileUA = !st.MobileUA
		case "mobile":
			st.MobileUA = true
		case "pc", "desktop":
			st.MobileUA = false
		default:
			h.println("usage: ua pc|mobile")
			return false
		}
		if st.MobileUA {
			h.println("User agent: mobile")
		} else {
			h.println("User agent: desktop")
		}
	case "images":
		h.setFlag("images", arg, &h.sess.Settings().AutoImages, "Inline images")
	case "linkfilter":
		h.setFlag("linkfilter", arg, &h.sess.Settings().FilterIcons, "Icon-link filter")
	case "searchmode":
		p, err := search.ParseProvider(arg)
		if err != nil {
			h.println("usage: searchmode auto|cse|browser")
			return false
		}
		h.sess.Settings().Provider = p
		h.println("Search mode: " + string(p))
	case "serve":
		h.serveCommand(arg)
	default:
		h.println("Unknown command. Type \"help\".")
	}
	return false
}

// run executes op, printing either the refreshed page or the error.
func (h *handler) run(op func() error, showPage bool) {
	if err := op(); err != nil {
		h.println("Error: " + err.Error())
		return
	}
	if showPage {
		h.print(clearScreen)
		h.print(h.sess.Text())
		h.print("\n")
	}
}

// setFlag applies an explicit on/off argument, toggling when absent.
func (h *handler) setFlag(name, arg string, flag *bool, label string) {
	switch arg {
	case "":
		*flag = !*flag
	case "on":
		*flag = true
	case "off":
		*flag = false
	default:
		h.println("usage: " + name + " on|off")
		return
	}
	h.println(label + ": " + onOff(*flag))
}

func (h *handler) imgCommand(ctx context.Context, arg string) {
	if sub, rest, found := strings.Cut(arg, " "); found && sub == "width" {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			h.println("usage: img width <n>")
			return
		}
		w := h.sess.Settings().SetASCIIWidth(n)
		h.println(fmt.Sprintf("ASCII art width: %d", w))
		return
	} else if arg == "width" {
		h.println("usage: img width <n>")
		return
	}
	switch arg {
	case "", "list":
		h.listURLs("Images", h.sess.Images())
	case "all":
		images := h.sess.Images()
		if len(images) == 0 {
			h.println("No images on this page.")
			return
		}
		for i := range images {
			art, err := h.sess.ImageArt(ctx, i+1)
			if err != nil {
				h.println("Error: " + err.Error())
				return
			}
			h.print(fmt.Sprintf("\n[IMG %d]\n", i+1))
			h.print(art)
		}
	default:
		n, err := strconv.Atoi(arg)
		if err != nil {
			h.println("usage: img <n> | all | list")
			return
		}
		art, err := h.sess.ImageArt(ctx, n)
		if err != nil {
			h.println("Error: " + err.Error())
			return
		}
		h.print(art)
	}
}

func (h *handler) serveCommand(arg string) {
	fields := strings.Fields(arg)
	if len(fields) > 0 && fields[0] == "stop" {
		if err := h.files.Stop(); err != nil {
			h.println("Error: " + err.Error())
			return
		}
		h.println("File server stopped.")
		return
	}
	if len(fields) > 0 && fields[0] == "start" {
		fields = fields[1:]
	}

	dir := h.serveDir
	port := 0
	if len(fields) > 0 {
		dir = fields[0]
	}
	if len(fields) > 1 {
		p, err := strconv.Atoi(fields[1])
		if err != nil || p < 0 || p > 65535 {
			h.println("usage: serve start <dir> [port] | serve stop")
			return
		}
		port = p
	}
	if dir == "" {
		h.println("usage: serve start <dir> [port] | serve stop")
		return
	}
	url, err := h.files.Start(dir, port)
	if err != nil {
		h.println("Error: " + err.Error())
		return
	}
	h.println("Serving " + dir + " at " + url)
}

func (h *handler) listURLs(label string, urls []string) {
	if len(urls) == 0 {
		h.println("No " + strings.ToLower(label) + " on this page.")
		return
	}
	h.println("-- " + label + " --")
	for i, u := range urls {
		h.println(fmt.Sprintf("[%d] <%s>", i+1, u))
	}
}

func (h *handler) println(s string) { h.print(s + "\n") }

// print writes s with LF expanded to CRLF for telnet clients.
func (h *handler) print(s string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\r\n")
	if _, err := io.WriteString(h.w, s); err != nil {
		h.logger.Debug("telnet: write failed", "error", err)
	}
}
