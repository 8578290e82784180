package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/sexpfmt"
	"pkt.systems/version"
)

const defaultWidth = 80

func init() {
	version.SetDefaultModule("pkt.systems/sexpfmt")
}

func main() {
	var (
		widthFlag  int
		outPath    string
		writeFiles bool
		checkOnly  bool
		jobs       int
		colorFlag  string
	)

	flags := pflag.NewFlagSet("sexpfmt", pflag.ExitOnError)
	flags.IntVarP(&widthFlag, "width", "w", 0, "Output width override (0 uses sexpfmt.toml or terminal width)")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVar(&writeFiles, "write", false, "Rewrite the named files in place")
	flags.BoolVar(&checkOnly, "check", false, "List files whose formatting differs; exit 1 if any")
	flags.IntVar(&jobs, "jobs", 0, "Max files formatted in parallel with --write/--check (0 uses all CPUs)")
	flags.StringVar(&colorFlag, "color", "auto", "Color diagnostics: auto|on|off")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: sexpfmt [flags] [inputs...]\n")
		fmt.Fprintln(os.Stderr, "\nIf no input is provided, S-expressions are read from stdin.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	useColor, err := resolveColor(colorFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --color %q: %v\n", colorFlag, err)
		os.Exit(2)
	}
	color.NoColor = !useColor

	if writeFiles && checkOnly {
		fmt.Fprintln(os.Stderr, "--write and --check are mutually exclusive")
		os.Exit(2)
	}

	width, err := resolveWidth(widthFlag, flags.Changed("width"), ".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "sexpfmt: %v\n", err)
		os.Exit(1)
	}

	args := flags.Args()

	if writeFiles || checkOnly {
		if outPath != "" {
			fmt.Fprintln(os.Stderr, "-o/--output cannot be combined with --write or --check")
			os.Exit(2)
		}
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "--write and --check need at least one file argument")
			os.Exit(2)
		}
		if err := ensureLocalFiles(args); err != nil {
			fmt.Fprintf(os.Stderr, "sexpfmt: %v\n", err)
			os.Exit(2)
		}
		results, err := formatFiles(context.Background(), args, width, jobs, checkOnly)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sexpfmt: %v\n", err)
			os.Exit(1)
		}
		var failed, changed bool
		for _, res := range results {
			if res.err != nil {
				failed = true
				reportError(res.path, res.err)
				continue
			}
			if !res.changed {
				continue
			}
			changed = true
			if checkOnly {
				fmt.Fprintln(os.Stdout, res.path)
			} else {
				fmt.Fprintf(os.Stdout, "reformatted %s\n", res.path)
			}
		}
		if failed || (checkOnly && changed) {
			os.Exit(1)
		}
		return
	}

	reader, closer, err := openInputs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	writer, closeOut, err := resolveOutput(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open output: %v\n", err)
		os.Exit(1)
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	if err := sexpfmt.Format(sexpfmt.FormatRequest{
		Reader: reader,
		Writer: writer,
		Width:  width,
	}); err != nil {
		var diagPath string
		if len(args) == 1 {
			diagPath = args[0]
		}
		reportError(diagPath, err)
		os.Exit(1)
	}
}

var diagPosColor = color.New(color.Bold)

// reportError prints one diagnostic line to stderr. Parse failures render as
// sexpfmt: path:line:col: message so editors can jump to the position.
func reportError(path string, err error) {
	var perr *sexpfmt.ParseError
	if errors.As(err, &perr) {
		loc := perr.Pos.String()
		if path != "" {
			loc = path + ":" + loc
		}
		fmt.Fprintf(os.Stderr, "sexpfmt: %s: %v\n", diagPosColor.Sprint(loc), perr.Err)
		return
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "sexpfmt: %s: %v\n", path, err)
		return
	}
	fmt.Fprintf(os.Stderr, "sexpfmt: %v\n", err)
}

// resolveWidth applies the width precedence: an explicit flag, then the
// nearest sexpfmt.toml, then the terminal.
func resolveWidth(width int, explicit bool, configStart string) (int, error) {
	if explicit && width > 0 {
		return width, nil
	}
	cfg, ok, err := loadConfig(configStart)
	if err != nil {
		return 0, err
	}
	if ok && cfg.Width > 0 {
		return cfg.Width, nil
	}
	return terminalWidth(defaultWidth), nil
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconvAtoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

func resolveColor(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return term.IsTerminal(int(os.Stderr.Fd())), nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}

// ensureLocalFiles rejects URL arguments; in-place rewriting only makes
// sense for paths we can write back to.
func ensureLocalFiles(args []string) error {
	for _, raw := range args {
		if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
			return fmt.Errorf("%s: --write and --check take local file paths only", raw)
		}
	}
	return nil
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	closed    bool
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func (m *multiInputReader) Close() error {
	m.closed = true
	if m.curCloser != nil {
		return m.curCloser.Close()
	}
	return nil
}

func openInputs(args []string) (io.Reader, io.Closer, error) {
	if len(args) == 0 {
		return os.Stdin, nil, nil
	}
	sources := make([]inputSource, 0, len(args))
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}
	return &multiInputReader{sources: sources}, nil, nil
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openURL(raw)
			}}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openFile(path)
			}}, nil
		}
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openFile(raw)
	}}, nil
}

func openURL(raw string) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, resp.Body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	clean := normalizePath(path)
	f, err := os.Open(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return os.Stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func strconvAtoi(value string) (int, error) {
	var n int
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return 0, fmt.Errorf("invalid int")
		}
		n = n*10 + int(value[i]-'0')
	}
	return n, nil
}
