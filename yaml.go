package mcvhost

import (
	yaml "gopkg.in/yaml.v3"
)

type listenerYAML struct {
	Address  string   `yaml:"address"`
	PingMode PingMode `yaml:"pingmode,omitempty"`
	Logfile  Logfile  `yaml:"logfile,omitempty"`
	Vhosts   []*Vhost `yaml:"vhosts,omitempty"`
}

func (l *Listener) MarshalYAML() (interface{}, error) {
	return listenerYAML{
		Address:  l.Address.String(),
		PingMode: l.PingMode,
		Logfile:  l.Logfile,
		Vhosts:   l.Vhosts,
	}, nil
}

type vhostYAML struct {
	Hostname        string `yaml:"vhost"`
	InternalAddress string `yaml:"internaladdress,omitempty"`
}

func (v *Vhost) MarshalYAML() (interface{}, error) {
	out := vhostYAML{
		Hostname: v.Hostname,
	}
	if v.InternalAddress.IsValid() {
		out.InternalAddress = v.InternalAddress.String()
	}
	return out, nil
}

func (ForwardPing) MarshalYAML() (interface{}, error) {
	return "forward", nil
}

type staticPingYAML struct {
	Mode       string `yaml:"mode"`
	Motd       string `yaml:"motd"`
	Version    string `yaml:"version,omitempty"`
	NumPlayers int    `yaml:"numplayers"`
	MaxPlayers int    `yaml:"maxplayers"`
}

func (s *StaticPing) MarshalYAML() (interface{}, error) {
	return staticPingYAML{
		Mode:       "static",
		Motd:       s.Motd,
		Version:    s.Version,
		NumPlayers: s.NumPlayers,
		MaxPlayers: s.MaxPlayers,
	}, nil
}

func (l Logfile) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// Dump renders c in YAML.
func Dump(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}
