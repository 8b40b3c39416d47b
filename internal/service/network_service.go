package service

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"

	"github.com/homehub/panel/internal/config"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"go.uber.org/zap"
)

// TailscalePeer is one device on the tailnet, trimmed to dashboard fields
type TailscalePeer struct {
	HostName     string   `json:"hostname"`
	DNSName      string   `json:"dns_name"`
	OS           string   `json:"os"`
	TailscaleIPs []string `json:"tailscale_ips"`
	Online       bool     `json:"online"`
}

// TailscaleStatus summarizes `tailscale status --json`
type TailscaleStatus struct {
	Installed   bool            `json:"installed"`
	BackendOK   bool            `json:"backend_ok"`
	Self        *TailscalePeer  `json:"self,omitempty"`
	MagicDNS    string          `json:"magic_dns,omitempty"`
	Peers       []TailscalePeer `json:"peers"`
	OnlineCount int             `json:"online_count"`
}

type NetworkService struct {
	cfg    *config.NetworkConfig
	logger *zap.Logger
}

func NewNetworkService(cfg *config.NetworkConfig, logger *zap.Logger) *NetworkService {
	return &NetworkService{
		cfg:    cfg,
		logger: logger,
	}
}

// tailscaleStatusJSON mirrors the parts of the CLI output we read
type tailscaleStatusJSON struct {
	BackendState   string                        `json:"BackendState"`
	MagicDNSSuffix string                        `json:"MagicDNSSuffix"`
	Self           *tailscalePeerJSON            `json:"Self"`
	Peer           map[string]*tailscalePeerJSON `json:"Peer"`
}

type tailscalePeerJSON struct {
	HostName     string   `json:"HostName"`
	DNSName      string   `json:"DNSName"`
	OS           string   `json:"OS"`
	TailscaleIPs []string `json:"TailscaleIPs"`
	Online       bool     `json:"Online"`
}

// Status shells out to the tailscale CLI and reports the tailnet. A missing
// binary is not an error; the dashboard just shows tailscale as absent.
func (s *NetworkService) Status(ctx context.Context, actor *Actor) (*TailscaleStatus, error) {
	if !actor.Role.IsGlobalAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.cfg.TailscaleBin, "status", "--json")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if execErr, ok := err.(*exec.Error); ok && execErr.Err == exec.ErrNotFound {
			return &TailscaleStatus{Installed: false, Peers: []TailscalePeer{}}, nil
		}
		s.logger.Warn("tailscale status failed", zap.Error(err))
		return &TailscaleStatus{Installed: true, Peers: []TailscalePeer{}}, nil
	}

	var raw tailscaleStatusJSON
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		s.logger.Warn("Failed to parse tailscale output", zap.Error(err))
		return &TailscaleStatus{Installed: true, Peers: []TailscalePeer{}}, nil
	}

	status := &TailscaleStatus{
		Installed: true,
		BackendOK: raw.BackendState == "Running",
		MagicDNS:  raw.MagicDNSSuffix,
		Peers:     make([]TailscalePeer, 0, len(raw.Peer)),
	}

	if raw.Self != nil {
		self := convertPeer(raw.Self)
		status.Self = &self
	}

	for _, p := range raw.Peer {
		peer := convertPeer(p)
		status.Peers = append(status.Peers, peer)
		if peer.Online {
			status.OnlineCount++
		}
	}

	return status, nil
}

func convertPeer(p *tailscalePeerJSON) TailscalePeer {
	return TailscalePeer{
		HostName:     p.HostName,
		DNSName:      p.DNSName,
		OS:           p.OS,
		TailscaleIPs: p.TailscaleIPs,
		Online:       p.Online,
	}
}
