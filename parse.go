package mcvhost

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrInvalidPingMode   = errors.New("invalid pingmode")
	ErrLogfileUnwritable = errors.New("logfile not writable")
)

// ParseFile reads the configuration at path.
func ParseFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse reads one directive per line from r. Context dependent directives
// apply to the most recent listener or vhost and are skipped when there is
// none. Unknown keys are skipped as well.
func Parse(r io.Reader) (*Config, error) {
	p := &parser{
		config: &Config{},
	}

	// Lines have no length limit.
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line == "" && err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("line %d: %w", p.lines+1, err)
		}
		p.lines++
		line = strings.TrimSuffix(line, "\n")
		if p.lines == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if perr := p.parseLine(strings.TrimSuffix(line, "\r")); perr != nil {
			return nil, fmt.Errorf("line %d: %w", p.lines, perr)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.lines, err)
		}
	}

	p.config.Lines = p.lines
	return p.config, nil
}

type parser struct {
	config *Config
	lines  int

	listener *Listener
	vhost    *Vhost
}

func (p *parser) parseLine(line string) error {
	if isIgnorable(line) {
		return nil
	}
	key, value, ok := splitDirective(line)
	if !ok {
		return nil
	}

	switch {
	case key == "daemon":
		if value == "true" {
			p.config.Daemon = true
		}
	case key == "listener":
		l, err := NewListener(value)
		if err != nil {
			return fmt.Errorf("listener: %w", err)
		}
		p.config.AddListener(l)
		p.listener = l
		p.vhost = nil
	case p.listener == nil:
		// everything below needs a listener
	case key == "pingmode":
		switch value {
		case "forward":
			p.listener.PingMode = ForwardPing{}
		case "static":
			p.listener.PingMode = &StaticPing{
				Motd: DefaultMotd,
			}
		default:
			return fmt.Errorf("%w %q, only 'forward' and 'static' are valid", ErrInvalidPingMode, value)
		}
	case key == "logfile" && p.listener.Logfile.Kind == LogUnset:
		lf, err := parseLogfile(value)
		if err != nil {
			return err
		}
		p.listener.Logfile = lf
	case key == "vhost":
		v := NewVhost(value)
		p.listener.AddVhost(v)
		p.vhost = v
	case key == "internaladdress" && p.vhost != nil:
		if err := p.vhost.FillInAddress(value); err != nil {
			return fmt.Errorf("internaladdress: %w", err)
		}
	default:
		s := p.listener.Static()
		if s == nil {
			return nil
		}
		switch key {
		case "version":
			s.Version = value
		case "numplayers":
			s.NumPlayers = atoi(value)
		case "maxplayers":
			s.MaxPlayers = atoi(value)
		}
	}
	return nil
}

func parseLogfile(value string) (Logfile, error) {
	switch value {
	case "stderr":
		return Logfile{Kind: LogStderr}, nil
	case "stdout":
		return Logfile{Kind: LogStdout}, nil
	case "syslog":
		return Logfile{Kind: LogSyslog}, nil
	}

	// The handle is only a probe, the listener logger opens the file again.
	f, err := os.OpenFile(value, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Logfile{}, fmt.Errorf("%w: %w", ErrLogfileUnwritable, err)
	}
	f.Close()
	return Logfile{Kind: LogPath, Path: value}, nil
}

func isIgnorable(line string) bool {
	if line == "" || line[0] == '#' {
		return true
	}
	return len(line) == 1 && (line[0] < 0x20 || line[0] == 0x7f)
}

// splitDirective matches "key = value" where key is [a-z_]+, the spaces
// around '=' are optional and value runs up to the first tab.
func splitDirective(line string) (key, value string, ok bool) {
	i := 0
	for i < len(line) && (line[i] >= 'a' && line[i] <= 'z' || line[i] == '_') {
		i++
	}
	if i == 0 {
		return "", "", false
	}
	key = line[:i]

	rest := strings.TrimLeft(line[i:], " \t\v\f")
	if !strings.HasPrefix(rest, "=") {
		return "", "", false
	}
	rest = strings.TrimLeft(rest[1:], " \t\v\f")
	if j := strings.IndexByte(rest, '\t'); j >= 0 {
		rest = rest[:j]
	}
	if rest == "" {
		return "", "", false
	}
	return key, rest, true
}

// atoi reads an integer prefix: leading whitespace, an optional sign and the
// longest run of digits. Anything unparsable is 0.
func atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<31-1 {
			return 0
		}
	}
	if neg {
		return -n
	}
	return n
}
