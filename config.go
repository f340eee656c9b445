package mcvhost

import (
	"fmt"
	"net/netip"
)

// DefaultMotd is the message of the day a static ping answers with until
// the configuration overrides it.
const DefaultMotd = "A Minecraft Server"

type Config struct {
	Daemon    bool        `yaml:"daemon,omitempty"`
	Listeners []*Listener `yaml:"listeners,omitempty"`

	// Lines is the number of lines consumed from the configuration file.
	Lines int `yaml:"-"`
}

type Listener struct {
	Address  netip.AddrPort
	PingMode PingMode
	Logfile  Logfile
	Vhosts   []*Vhost
}

type Vhost struct {
	Hostname        string
	InternalAddress netip.AddrPort
}

// PingMode decides how a listener answers status queries. A nil PingMode
// is unset.
type PingMode interface {
	pingMode() string
}

// ForwardPing hands status queries to the vhost backend.
type ForwardPing struct{}

func (ForwardPing) pingMode() string { return "forward" }

// StaticPing answers status queries without contacting a backend.
type StaticPing struct {
	Motd       string
	Version    string
	NumPlayers int
	MaxPlayers int
}

func (*StaticPing) pingMode() string { return "static" }

type LogKind int

const (
	LogUnset LogKind = iota
	LogStderr
	LogStdout
	LogSyslog
	LogPath
)

func (k LogKind) String() string {
	switch k {
	case LogStderr:
		return "stderr"
	case LogStdout:
		return "stdout"
	case LogSyslog:
		return "syslog"
	case LogPath:
		return "path"
	}
	return "unset"
}

type Logfile struct {
	Kind LogKind
	Path string
}

func (l Logfile) String() string {
	if l.Kind == LogPath {
		return l.Path
	}
	return l.Kind.String()
}

func NewListener(address string) (*Listener, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return &Listener{
		Address: addr,
	}, nil
}

func NewVhost(hostname string) *Vhost {
	return &Vhost{
		Hostname: hostname,
	}
}

// FillInAddress sets the backend address of v. On failure v is left as it was.
func (v *Vhost) FillInAddress(address string) error {
	addr, err := ParseAddress(address)
	if err != nil {
		return err
	}
	v.InternalAddress = addr
	return nil
}

func (c *Config) AddListener(l *Listener) {
	c.Listeners = append(c.Listeners, l)
}

func (l *Listener) AddVhost(v *Vhost) {
	l.Vhosts = append(l.Vhosts, v)
}

// Static returns the static ping settings of l, or nil when l does not
// answer pings itself.
func (l *Listener) Static() *StaticPing {
	s, _ := l.PingMode.(*StaticPing)
	return s
}

func (l *Listener) String() string {
	return l.Address.String()
}

func (v *Vhost) String() string {
	return fmt.Sprintf("%s -> %s", v.Hostname, v.InternalAddress)
}
